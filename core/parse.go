package core

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
)

// requestValidate checks the declarative constraints of StatisticsRequest.
// Initialized in init() so field errors carry the wire names.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	requestValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ParsedRequest is a statistics request decoded to typed codes.
// Company and Family may still be absent.
type ParsedRequest struct {
	Range        schema.DateRange
	Partitioning schema.Partitioning
	Product      schema.Product
	Company      schema.Optional[schema.Company]
	Family       schema.Optional[schema.Family]
	Phase        schema.Optional[schema.ProvisioningPhase]
}

// ParseInputs validates the raw request and decodes every label once.
func ParseInputs(req schema.StatisticsRequest) (ParsedRequest, error) {
	req = req.Normalized()
	if err := requestValidate.Struct(req); err != nil {
		return ParsedRequest{}, translateValidation(err)
	}

	from, err := schema.ParseDate(req.QueryDateFrom)
	if err != nil {
		return ParsedRequest{}, invalidDate("queryDateFrom", req.QueryDateFrom)
	}
	to, err := schema.ParseDate(req.QueryDateTo)
	if err != nil {
		return ParsedRequest{}, invalidDate("queryDateTo", req.QueryDateTo)
	}
	if from.After(to) {
		return ParsedRequest{}, contract.NewInvalidArgument("queryDateFrom cannot be after queryDateTo")
	}
	dateRange, err := schema.NewDateRange(from, to)
	if err != nil {
		return ParsedRequest{}, contract.NewInvalidArgument("%v", err)
	}

	out := ParsedRequest{Range: dateRange}

	partitioning, ok := schema.ParsePartitioning(req.DataPartitioning)
	if !ok {
		return ParsedRequest{}, invalidLabel(req.DataPartitioning, schema.PartitioningKind)
	}
	out.Partitioning = partitioning

	product, ok := schema.ParseProduct(req.Product)
	if !ok {
		return ParsedRequest{}, invalidLabel(req.Product, schema.ProductKind)
	}
	out.Product = product

	if out.Company, err = parseOptional(req.Company, schema.ParseCompany, schema.CompanyKind); err != nil {
		return ParsedRequest{}, err
	}
	if out.Family, err = parseOptional(req.Family, schema.ParseFamily, schema.FamilyKind); err != nil {
		return ParsedRequest{}, err
	}
	if out.Phase, err = parseOptional(req.ProvisioningPhase, schema.ParsePhase, schema.PhaseKind); err != nil {
		return ParsedRequest{}, err
	}
	return out, nil
}

// ParseCompanyFamily decodes optional company and family labels.
func ParseCompanyFamily(company, family string) (schema.Optional[schema.Company], schema.Optional[schema.Family], error) {
	c, err := parseOptional(strings.TrimSpace(company), schema.ParseCompany, schema.CompanyKind)
	if err != nil {
		return c, schema.None[schema.Family](), err
	}
	f, err := parseOptional(strings.TrimSpace(family), schema.ParseFamily, schema.FamilyKind)
	return c, f, err
}

// parseOptional maps a blank label to None and an unknown label to InvalidArgument.
func parseOptional[T any](label string, parse func(string) (T, bool), kind schema.EnumKind) (schema.Optional[T], error) {
	if label == "" {
		return schema.None[T](), nil
	}
	v, ok := parse(label)
	if !ok {
		return schema.None[T](), invalidLabel(label, kind)
	}
	return schema.Some(v), nil
}

func invalidLabel(label string, kind schema.EnumKind) error {
	return contract.NewInvalidArgument("Invalid %s value: '%s'. Valid values are: %s",
		kind, label, strings.Join(schema.Labels(kind), ", "))
}

func invalidDate(field, value string) error {
	return contract.NewInvalidArgument("Invalid %s format: '%s'. %s", field, value, contract.MsgDateFormatSuffix)
}

// translateValidation maps the first validator failure to the caller-facing message.
func translateValidation(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return contract.NewInvalidArgument("%v", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		if fe.Field() == "queryDateFrom" || fe.Field() == "queryDateTo" {
			return contract.NewInvalidArgument("%s parameter is required. %s", fe.Field(), contract.MsgDateFormatSuffix)
		}
		return contract.NewInvalidArgument("%s parameter is required", fe.Field())
	case "datetime":
		return invalidDate(fe.Field(), fmt.Sprint(fe.Value()))
	default:
		return contract.NewInvalidArgument("Invalid %s value: '%v'", fe.Field(), fe.Value())
	}
}
