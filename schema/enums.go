package schema

import (
	"fmt"
)

// Company is the catalog code of a company.
type Company int

// Family is the catalog code of a product family.
type Family int

// Product is the catalog code of a product.
type Product int

// ProvisioningPhase is the code of a provisioning process phase.
type ProvisioningPhase int

// Partitioning is the bucket granularity of a statistics query.
type Partitioning int

// Companies.
const (
	NetWave Company = 1
	SkyLink Company = 2

	// Placeholder companies that live in catalogs as test fixtures.
	Test1 Company = 901
	Test2 Company = 902
	Test3 Company = 903
)

// Families.
const (
	Connectivity    Family = 1
	CloudCompute    Family = 2
	CloudStorage    Family = 3
	NetworkServices Family = 4
)

// Products.
const (
	FiberInternet1Gbps       Product = 1
	BusinessEthernet         Product = 2
	VirtualPrivateServer     Product = 3
	DedicatedBareMetalServer Product = 4
	ObjectStorage            Product = 5
	BackupAsAService         Product = 6
	ManagedFirewall          Product = 7
	LoadBalancerAsAService   Product = 8
)

// Provisioning phases.
const (
	PhaseNothing      ProvisioningPhase = 0
	PhaseCreate       ProvisioningPhase = 1
	PhaseModify       ProvisioningPhase = 2
	PhaseRenew        ProvisioningPhase = 3
	PhaseDeactivation ProvisioningPhase = 4
	PhaseExpiration   ProvisioningPhase = 5
	PhaseGet          ProvisioningPhase = 6
	PhaseGDPR         ProvisioningPhase = 7
)

// Partitionings.
const (
	PartitionYear  Partitioning = 1
	PartitionMonth Partitioning = 2
	PartitionDay   Partitioning = 3
)

// TestCompanies are removed from hierarchy candidates before disambiguation.
var TestCompanies = map[Company]struct{}{
	Test1: {},
	Test2: {},
	Test3: {},
}

func (c Company) String() string           { return CodeToLabel(int(c), CompanyKind) }
func (f Family) String() string            { return CodeToLabel(int(f), FamilyKind) }
func (p Product) String() string           { return CodeToLabel(int(p), ProductKind) }
func (p ProvisioningPhase) String() string { return CodeToLabel(int(p), PhaseKind) }
func (p Partitioning) String() string      { return CodeToLabel(int(p), PartitioningKind) }

// IsKnown reports whether c is a defined member.
func (c Company) IsKnown() bool { return c.String() != UnknownValue }

// IsKnown reports whether f is a defined member.
func (f Family) IsKnown() bool { return f.String() != UnknownValue }

// IsKnown reports whether p is a defined member.
func (p Product) IsKnown() bool { return p.String() != UnknownValue }

// IsTest reports whether c is one of the placeholder test companies.
func (c Company) IsTest() bool {
	_, ok := TestCompanies[c]
	return ok
}

// MarshalText renders the label so JSON and YAML carry names, not codes.
func (c Company) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// MarshalText renders the label so JSON and YAML carry names, not codes.
func (f Family) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// MarshalText renders the label so JSON and YAML carry names, not codes.
func (p Product) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// ParseCompany decodes a company label.
func ParseCompany(label string) (Company, bool) {
	code, ok := LabelToCode(label, CompanyKind)
	return Company(code), ok
}

// ParseFamily decodes a family label.
func ParseFamily(label string) (Family, bool) {
	code, ok := LabelToCode(label, FamilyKind)
	return Family(code), ok
}

// ParseProduct decodes a product label.
func ParseProduct(label string) (Product, bool) {
	code, ok := LabelToCode(label, ProductKind)
	return Product(code), ok
}

// ParsePhase decodes a provisioning phase label.
func ParsePhase(label string) (ProvisioningPhase, bool) {
	code, ok := LabelToCode(label, PhaseKind)
	return ProvisioningPhase(code), ok
}

// ParsePartitioning decodes a partitioning label.
func ParsePartitioning(label string) (Partitioning, bool) {
	code, ok := LabelToCode(label, PartitioningKind)
	return Partitioning(code), ok
}

// UnmarshalText accepts a company label.
func (c *Company) UnmarshalText(text []byte) error {
	v, ok := ParseCompany(string(text))
	if !ok {
		return fmt.Errorf("unknown company %q", text)
	}
	*c = v
	return nil
}

// UnmarshalText accepts a family label.
func (f *Family) UnmarshalText(text []byte) error {
	v, ok := ParseFamily(string(text))
	if !ok {
		return fmt.Errorf("unknown family %q", text)
	}
	*f = v
	return nil
}

// UnmarshalText accepts a product label.
func (p *Product) UnmarshalText(text []byte) error {
	v, ok := ParseProduct(string(text))
	if !ok {
		return fmt.Errorf("unknown product %q", text)
	}
	*p = v
	return nil
}
