package schema

import (
	"strings"
)

// EnumKind identifies one of the categorical enumerations.
type EnumKind int

// All enumerations known to the codec.
const (
	CompanyKind EnumKind = iota + 1
	FamilyKind
	ProductKind
	PhaseKind
	PartitioningKind
)

// String returns the parameter name usually associated with the kind.
func (k EnumKind) String() string {
	switch k {
	case CompanyKind:
		return "company"
	case FamilyKind:
		return "family"
	case ProductKind:
		return "product"
	case PhaseKind:
		return "provisioningPhase"
	case PartitioningKind:
		return "dataPartitioning"
	default:
		return "unknown"
	}
}

type enumMember struct {
	code  int
	label string
}

// enumRegistry holds the members of every enumeration in declaration order.
// It is never mutated after package initialization.
var enumRegistry = map[EnumKind][]enumMember{
	CompanyKind: {
		{int(NetWave), "NetWave"},
		{int(SkyLink), "SkyLink"},
		{int(Test1), "Test1"},
		{int(Test2), "Test2"},
		{int(Test3), "Test3"},
	},
	FamilyKind: {
		{int(Connectivity), "Connectivity"},
		{int(CloudCompute), "CloudCompute"},
		{int(CloudStorage), "CloudStorage"},
		{int(NetworkServices), "NetworkServices"},
	},
	ProductKind: {
		{int(FiberInternet1Gbps), "FiberInternet1Gbps"},
		{int(BusinessEthernet), "BusinessEthernet"},
		{int(VirtualPrivateServer), "VirtualPrivateServer"},
		{int(DedicatedBareMetalServer), "DedicatedBareMetalServer"},
		{int(ObjectStorage), "ObjectStorage"},
		{int(BackupAsAService), "BackupAsAService"},
		{int(ManagedFirewall), "ManagedFirewall"},
		{int(LoadBalancerAsAService), "LoadBalancerAsAService"},
	},
	PhaseKind: {
		{int(PhaseNothing), "Nothing"},
		{int(PhaseCreate), "Create"},
		{int(PhaseModify), "Modify"},
		{int(PhaseRenew), "Renew"},
		{int(PhaseDeactivation), "Deactivation"},
		{int(PhaseExpiration), "Expiration"},
		{int(PhaseGet), "Get"},
		{int(PhaseGDPR), "GDPR"},
	},
	PartitioningKind: {
		{int(PartitionYear), "Year"},
		{int(PartitionMonth), "Month"},
		{int(PartitionDay), "Day"},
	},
}

// LabelToCode looks up label among the members of kind, ignoring case and
// surrounding whitespace. The second return value is false when nothing matches.
func LabelToCode(label string, kind EnumKind) (int, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, false
	}
	for _, m := range enumRegistry[kind] {
		if strings.EqualFold(m.label, label) {
			return m.code, true
		}
	}
	return 0, false
}

// CodeToLabel returns the member name for code, or UnknownValue.
func CodeToLabel(code int, kind EnumKind) string {
	for _, m := range enumRegistry[kind] {
		if m.code == code {
			return m.label
		}
	}
	return UnknownValue
}

// Labels returns every label defined for kind in declaration order.
func Labels(kind EnumKind) []string {
	members := enumRegistry[kind]
	labels := make([]string, 0, len(members))
	for _, m := range members {
		labels = append(labels, m.label)
	}
	return labels
}
