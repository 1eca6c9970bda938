package scanner

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"
)

type fakeCredential struct{}

func (f *fakeCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "fake-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// AzureClients holds all Azure SDK clients used by the scanner.
type AzureClients struct {
	VirtualNetworks *armnetwork.VirtualNetworksClient
	Subnets         *armnetwork.SubnetsClient
	Tables          *aztables.ServiceClient
}

// NewAzureClients initializes Azure SDK clients. When Config.EndpointURL is
// set, clients talk to that endpoint with a static credential (simulator
// mode); otherwise the default credential chain is used.
func NewAzureClients(cfg Config) (*AzureClients, error) {
	if cfg.EndpointURL != "" {
		return newAzureClientsWithEndpoint(cfg)
	}
	return newAzureClientsDefault(cfg)
}

func newAzureClientsWithEndpoint(cfg Config) (*AzureClients, error) {
	cred := &fakeCredential{}
	armOpts := &arm.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Cloud: cloud.Configuration{
				Services: map[cloud.ServiceName]cloud.ServiceConfiguration{
					cloud.ResourceManager: {
						Endpoint: cfg.EndpointURL,
						Audience: "https://management.azure.com/",
					},
				},
			},
			InsecureAllowCredentialWithHTTP: true,
		},
	}

	vnetClient, err := armnetwork.NewVirtualNetworksClient(cfg.SubscriptionID, cred, armOpts)
	if err != nil {
		return nil, err
	}

	subnetClient, err := armnetwork.NewSubnetsClient(cfg.SubscriptionID, cred, armOpts)
	if err != nil {
		return nil, err
	}

	tablesClient, err := aztables.NewServiceClient(cfg.TablesServiceURL(), cred, &aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			InsecureAllowCredentialWithHTTP: true,
		},
	})
	if err != nil {
		return nil, err
	}

	return &AzureClients{
		VirtualNetworks: vnetClient,
		Subnets:         subnetClient,
		Tables:          tablesClient,
	}, nil
}

func newAzureClientsDefault(cfg Config) (*AzureClients, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}

	vnetClient, err := armnetwork.NewVirtualNetworksClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}

	subnetClient, err := armnetwork.NewSubnetsClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}

	tablesClient, err := aztables.NewServiceClient(cfg.TablesServiceURL(), cred, nil)
	if err != nil {
		return nil, err
	}

	return &AzureClients{
		VirtualNetworks: vnetClient,
		Subnets:         subnetClient,
		Tables:          tablesClient,
	}, nil
}
