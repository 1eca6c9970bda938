package scanner

import (
	"fmt"
	"strings"
	"time"
)

// ItemKind distinguishes network-level from subnet-level rows.
type ItemKind string

const (
	KindNetwork ItemKind = "Network"
	KindSubnet  ItemKind = "Subnet"
)

// networkPartition is the fixed partition key for network-level rows.
// Subnet rows are partitioned by their parent network's name instead, so
// all subnets of one network share a partition.
const networkPartition = "vnet"

// TopologyItem is the normalized unit written to table storage. The
// (PartitionKey, RowKey) pair is stable across runs for the same logical
// network or subnet, which is what makes the sync idempotent.
type TopologyItem struct {
	PartitionKey  string
	RowKey        string
	Kind          ItemKind
	Name          string
	AddressPrefix string // subnet CIDR, empty on network rows
	AddressSpace  string // first prefix of the network's address space
	ParentName    string // owning network, set on subnet rows only
	ResourceGroup string
	Location      string
	ObservedAt    time.Time
	SourceID      string // fully-qualified Azure resource ID
}

// Key returns the composite key in "partition/row" form for log and
// failure reporting.
func (t TopologyItem) Key() string {
	return t.PartitionKey + "/" + t.RowKey
}

// NormalizeNetwork converts one virtual network and its subnets into the
// ordered sequence of items representing them: the network row first,
// then one row per subnet in source order. It is pure and performs no
// I/O. A network whose resource ID cannot be parsed into a resource
// group yields an error and no items.
func NormalizeNetwork(vnet VirtualNetwork, subnets []Subnet, observedAt time.Time) ([]TopologyItem, error) {
	rg, err := ResourceGroupFromID(vnet.ID)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", vnet.Name, err)
	}

	space := ""
	if len(vnet.AddressPrefixes) > 0 {
		space = vnet.AddressPrefixes[0]
	}

	items := make([]TopologyItem, 0, len(subnets)+1)
	items = append(items, TopologyItem{
		PartitionKey:  networkPartition,
		RowKey:        vnet.Name,
		Kind:          KindNetwork,
		Name:          vnet.Name,
		AddressSpace:  space,
		ResourceGroup: rg,
		Location:      vnet.Location,
		ObservedAt:    observedAt,
		SourceID:      vnet.ID,
	})

	for _, subnet := range subnets {
		items = append(items, TopologyItem{
			PartitionKey:  vnet.Name,
			RowKey:        subnet.Name,
			Kind:          KindSubnet,
			Name:          subnet.Name,
			AddressPrefix: subnet.AddressPrefix,
			AddressSpace:  space,
			ParentName:    vnet.Name,
			ResourceGroup: rg,
			Location:      vnet.Location,
			ObservedAt:    observedAt,
			SourceID:      subnet.ID,
		})
	}

	return items, nil
}

// ResourceGroupFromID extracts the resource group from an Azure resource
// ID of the form /subscriptions/{sub}/resourceGroups/{rg}/providers/...
func ResourceGroupFromID(id string) (string, error) {
	parts := strings.Split(id, "/")
	if len(parts) < 5 || !strings.EqualFold(parts[3], "resourceGroups") || parts[4] == "" {
		return "", fmt.Errorf("no resource group in resource ID %q", id)
	}
	return parts[4], nil
}
