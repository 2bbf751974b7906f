package common

import (
	"errors"
	"fmt"

	secretsInfra "github.com/Ethernal-Tech/cardano-infrastructure/secrets"
	secretsInfraHelper "github.com/Ethernal-Tech/cardano-infrastructure/secrets/helper"
	secretsInfraLocal "github.com/Ethernal-Tech/cardano-infrastructure/secrets/local"
)

// GetSecretsManager returns the secrets manager described by configPath. Without
// a config the keys are kept in dataPath, which is only allowed with insecureLocalStore.
func GetSecretsManager(
	dataPath, configPath string, insecureLocalStore bool,
) (secretsInfra.SecretsManager, error) {
	if configPath != "" {
		secretsConfig, err := secretsInfra.ReadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid secrets configuration: %w", err)
		}

		return secretsInfraHelper.CreateSecretsManager(secretsConfig)
	}

	// keys stored as plain files are meant for development and testing only
	if !insecureLocalStore {
		return nil, errors.New("insecure local storage not supported")
	}

	if dataPath == "" {
		return nil, errors.New("secrets data directory not specified")
	}

	if err := CreateDirectoryIfNotExists(dataPath); err != nil {
		return nil, fmt.Errorf("failed to create secrets directory %s: %w", dataPath, err)
	}

	return secretsInfraLocal.SecretsManagerFactory(&secretsInfra.SecretsManagerConfig{
		Path: dataPath,
	})
}
