package store

import (
	"encoding/binary"
	"time"

	"github.com/huangsam/provstats/schema"
	"github.com/spaolacci/murmur3"
)

// demoCatalog is the reference catalog served by the memory backend and
// loaded by Seed. It is never mutated.
var demoCatalog = []schema.HierarchyItem{
	{Company: schema.NetWave, Family: schema.Connectivity, Product: schema.FiberInternet1Gbps},
	{Company: schema.NetWave, Family: schema.Connectivity, Product: schema.BusinessEthernet},
	{Company: schema.NetWave, Family: schema.CloudCompute, Product: schema.VirtualPrivateServer},
	{Company: schema.NetWave, Family: schema.CloudCompute, Product: schema.DedicatedBareMetalServer},
	{Company: schema.NetWave, Family: schema.CloudStorage, Product: schema.BackupAsAService},
	{Company: schema.SkyLink, Family: schema.Connectivity, Product: schema.FiberInternet1Gbps},
	{Company: schema.SkyLink, Family: schema.Connectivity, Product: schema.BusinessEthernet},
	{Company: schema.SkyLink, Family: schema.CloudCompute, Product: schema.VirtualPrivateServer},
	{Company: schema.SkyLink, Family: schema.CloudStorage, Product: schema.ObjectStorage},
	{Company: schema.SkyLink, Family: schema.CloudStorage, Product: schema.BackupAsAService},
	{Company: schema.SkyLink, Family: schema.NetworkServices, Product: schema.ManagedFirewall},
	{Company: schema.NetWave, Family: schema.NetworkServices, Product: schema.ManagedFirewall},
	{Company: schema.NetWave, Family: schema.NetworkServices, Product: schema.LoadBalancerAsAService},
}

// DemoCatalog returns a copy of the reference catalog.
func DemoCatalog() []schema.HierarchyItem {
	out := make([]schema.HierarchyItem, len(demoCatalog))
	copy(out, demoCatalog)
	return out
}

// demoPhases are the phases synthetic statistics are generated for.
var demoPhases = []schema.ProvisioningPhase{
	schema.PhaseCreate,
	schema.PhaseModify,
	schema.PhaseRenew,
	schema.PhaseDeactivation,
}

// SyntheticDailyStat returns the deterministic counters of one day, hierarchy and phase.
// The same inputs always yield the same values, across processes and backends.
func SyntheticDailyStat(day time.Time, item schema.HierarchyItem, phase schema.ProvisioningPhase) schema.DailyStat {
	var key [24]byte
	binary.BigEndian.PutUint64(key[0:8], uint64(schema.DateOf(day).Unix()))
	binary.BigEndian.PutUint32(key[8:12], uint32(item.Company))
	binary.BigEndian.PutUint32(key[12:16], uint32(item.Family))
	binary.BigEndian.PutUint32(key[16:20], uint32(item.Product))
	binary.BigEndian.PutUint32(key[20:24], uint32(phase))
	h1, h2 := murmur3.Sum128(key[:])

	ok := int64(20 + h1%80)
	ko := int64((h1 >> 16) % 12)
	avg := 30 + float64(h2%270)
	return schema.DailyStat{
		Date:                schema.DateOf(day),
		Company:             item.Company,
		Family:              item.Family,
		Product:             item.Product,
		Phase:               phase,
		Ok:                  ok,
		Ko:                  ko,
		Total:               ok + ko,
		ElapsedSecondsTotal: avg * float64(ok+ko),
	}
}

// SyntheticDailyStats generates every daily row of the catalog inside r.
func SyntheticDailyStats(catalog []schema.HierarchyItem, r schema.DateRange) []schema.DailyStat {
	days := int(r.To.Sub(r.From).Hours()/24) + 1
	out := make([]schema.DailyStat, 0, days*len(catalog)*len(demoPhases))
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		for _, item := range catalog {
			for _, phase := range demoPhases {
				out = append(out, SyntheticDailyStat(d, item, phase))
			}
		}
	}
	return out
}
