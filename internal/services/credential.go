package services

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// Well-known Azurite development account.
const (
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// storageEndpoint is a storage service URL read from the environment.
type storageEndpoint struct {
	url string
}

// endpointFromEnv reads a required service URL.
func endpointFromEnv(key string) (storageEndpoint, error) {
	v := os.Getenv(key)
	if v == "" {
		return storageEndpoint{}, fmt.Errorf("%s environment variable is required", key)
	}
	return storageEndpoint{url: v}, nil
}

// local reports whether the endpoint is an Azurite emulator (plain http).
func (e storageEndpoint) local() bool {
	return strings.HasPrefix(e.url, "http://")
}

// sharedKey returns the Azurite account name and key.
func (e storageEndpoint) sharedKey() (string, string) {
	return azuriteAccountName, azuriteAccountKey
}

// newDefaultAzureCredential creates the managed-identity credential used outside Azurite.
func newDefaultAzureCredential() (azcore.TokenCredential, error) {
	slog.Info("using default Azure credentials")
	return azidentity.NewDefaultAzureCredential(nil)
}

// envOrDefault reads an optional setting.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
