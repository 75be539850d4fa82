// Where: internal/identity/sources.go
// What: azidentity-backed chain sources.
// Why: Isolate SDK credential construction behind the Source interface.
package identity

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

type userAssignedSource struct {
	clientID string
}

func (s userAssignedSource) Name() string {
	return fmt.Sprintf("user-assigned managed identity (%s)", s.clientID)
}

func (s userAssignedSource) Credential() (azcore.TokenCredential, error) {
	return azidentity.NewManagedIdentityCredential(&azidentity.ManagedIdentityCredentialOptions{
		ID: azidentity.ClientID(s.clientID),
	})
}

type systemAssignedSource struct{}

func (systemAssignedSource) Name() string { return "system-assigned managed identity" }

func (systemAssignedSource) Credential() (azcore.TokenCredential, error) {
	return azidentity.NewManagedIdentityCredential(nil)
}

type cliSource struct{}

func (cliSource) Name() string { return "azure cli" }

func (cliSource) Credential() (azcore.TokenCredential, error) {
	return azidentity.NewAzureCLICredential(nil)
}

type browserSource struct{}

func (browserSource) Name() string { return "interactive browser" }

func (browserSource) Credential() (azcore.TokenCredential, error) {
	return azidentity.NewInteractiveBrowserCredential(nil)
}
