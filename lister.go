package scanner

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"
)

// VirtualNetwork is a flattened virtual network record from the
// management plane.
type VirtualNetwork struct {
	ID              string
	Name            string
	Location        string
	AddressPrefixes []string
}

// Subnet is a flattened subnet record from the management plane.
type Subnet struct {
	ID            string
	Name          string
	AddressPrefix string
}

// NetworkLister enumerates the virtual networks and subnets visible to a
// subscription.
type NetworkLister interface {
	ListNetworks(ctx context.Context) ([]VirtualNetwork, error)
	ListSubnets(ctx context.Context, resourceGroup, vnetName string) ([]Subnet, error)
}

// ARMNetworkLister implements NetworkLister against the Azure Resource
// Manager network API.
type ARMNetworkLister struct {
	vnets   *armnetwork.VirtualNetworksClient
	subnets *armnetwork.SubnetsClient
}

// NewARMNetworkLister creates a lister backed by the given clients.
func NewARMNetworkLister(clients *AzureClients) *ARMNetworkLister {
	return &ARMNetworkLister{
		vnets:   clients.VirtualNetworks,
		subnets: clients.Subnets,
	}
}

func (l *ARMNetworkLister) ListNetworks(ctx context.Context) ([]VirtualNetwork, error) {
	var out []VirtualNetwork
	pager := l.vnets.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list virtual networks: %w", err)
		}
		for _, v := range page.Value {
			if v == nil {
				continue
			}
			vnet := VirtualNetwork{
				ID:       deref(v.ID),
				Name:     deref(v.Name),
				Location: deref(v.Location),
			}
			if v.Properties != nil && v.Properties.AddressSpace != nil {
				for _, prefix := range v.Properties.AddressSpace.AddressPrefixes {
					if prefix != nil {
						vnet.AddressPrefixes = append(vnet.AddressPrefixes, *prefix)
					}
				}
			}
			out = append(out, vnet)
		}
	}
	return out, nil
}

func (l *ARMNetworkLister) ListSubnets(ctx context.Context, resourceGroup, vnetName string) ([]Subnet, error) {
	var out []Subnet
	pager := l.subnets.NewListPager(resourceGroup, vnetName, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list subnets of %s/%s: %w", resourceGroup, vnetName, err)
		}
		for _, s := range page.Value {
			if s == nil {
				continue
			}
			subnet := Subnet{
				ID:   deref(s.ID),
				Name: deref(s.Name),
			}
			if s.Properties != nil {
				subnet.AddressPrefix = deref(s.Properties.AddressPrefix)
			}
			out = append(out, subnet)
		}
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
