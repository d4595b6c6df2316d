package core

import (
	"time"

	"github.com/huangsam/provstats/schema"
)

// testCatalog mirrors the demo catalog plus one test-company fixture and
// one entry with an undefined family code.
func testCatalog() []schema.HierarchyItem {
	return []schema.HierarchyItem{
		{Company: schema.NetWave, Family: schema.Connectivity, Product: schema.FiberInternet1Gbps},
		{Company: schema.NetWave, Family: schema.Connectivity, Product: schema.BusinessEthernet},
		{Company: schema.NetWave, Family: schema.CloudCompute, Product: schema.VirtualPrivateServer},
		{Company: schema.NetWave, Family: schema.CloudCompute, Product: schema.DedicatedBareMetalServer},
		{Company: schema.NetWave, Family: schema.NetworkServices, Product: schema.ManagedFirewall},
		{Company: schema.NetWave, Family: schema.NetworkServices, Product: schema.LoadBalancerAsAService},
		{Company: schema.SkyLink, Family: schema.CloudStorage, Product: schema.ObjectStorage},
		{Company: schema.SkyLink, Family: schema.CloudStorage, Product: schema.BackupAsAService},
		{Company: schema.SkyLink, Family: schema.NetworkServices, Product: schema.ManagedFirewall},
		{Company: schema.Test1, Family: schema.CloudStorage, Product: schema.ObjectStorage},
		{Company: schema.SkyLink, Family: schema.Family(99), Product: schema.DedicatedBareMetalServer},
	}
}

// productEntries returns the catalog entries of product.
func productEntries(product schema.Product) []schema.HierarchyItem {
	var out []schema.HierarchyItem
	for _, item := range testCatalog() {
		if item.Product == product {
			out = append(out, item)
		}
	}
	return out
}

// dailyRows builds one row per day of the range for a single hierarchy.
func dailyRows(from, to time.Time, company schema.Company, family schema.Family, product schema.Product) []schema.StatisticsRow {
	var rows []schema.StatisticsRow
	var cumulative int64
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		cumulative += 2
		rows = append(rows, schema.StatisticsRow{
			DateFrom:          d,
			DateTo:            d,
			Company:           company,
			Family:            family,
			Product:           product,
			ProvisioningPhase: schema.AllPhasesLabel,
			Ok:                10,
			Ko:                2,
			CumulativeKo:      cumulative,
			Total:             12,
		})
	}
	return rows
}

func mustDate(s string) time.Time {
	t, err := schema.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}
