package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureRequiredConfigurationRejectsMissingDataSource(testingT *testing.T) {
	application := NewServerApplication()
	_, commandErr := application.Command()
	require.NoError(testingT, commandErr)

	configuration := application.loadConfiguration()
	configuration.DatabaseDataSourceName = ""

	validationErr := application.ensureRequiredConfiguration(configuration)
	require.Error(testingT, validationErr)
	require.Contains(testingT, validationErr.Error(), flagNameDatabaseDataSourceName)
}

func TestEnsureRequiredConfigurationAcceptsCompleteConfiguration(testingT *testing.T) {
	application := NewServerApplication()
	_, commandErr := application.Command()
	require.NoError(testingT, commandErr)

	configuration := application.loadConfiguration()
	configuration.DatabaseDataSourceName = "file:contact.db"

	require.NoError(testingT, application.ensureRequiredConfiguration(configuration))
}

func TestLoadConfigurationAppliesDefaults(testingT *testing.T) {
	application := NewServerApplication()
	_, commandErr := application.Command()
	require.NoError(testingT, commandErr)

	configuration := application.loadConfiguration()
	require.Equal(testingT, defaultApplicationAddress, configuration.ApplicationAddress)
	require.Equal(testingT, defaultDatabaseDriverName, configuration.DatabaseDriverName)
	require.Equal(testingT, defaultAdminUsername, configuration.AdminUsername)
	require.Equal(testingT, defaultAdminPassword, configuration.AdminPassword)
	require.Equal(testingT, defaultAllowedOrigins, configuration.AllowedOrigins)
}

func TestEnvironmentOverridesFlagDefaults(testingT *testing.T) {
	testingT.Setenv(environmentKeyApplicationAddress, ":9090")
	testingT.Setenv(environmentKeyAdminUsername, "operator")

	application := NewServerApplication()
	_, commandErr := application.Command()
	require.NoError(testingT, commandErr)

	configuration := application.loadConfiguration()
	require.Equal(testingT, ":9090", configuration.ApplicationAddress)
	require.Equal(testingT, "operator", configuration.AdminUsername)
}

func TestUsesDefaultAdminCredentials(testingT *testing.T) {
	defaulted := ServerConfig{AdminUsername: defaultAdminUsername, AdminPassword: defaultAdminPassword}
	require.True(testingT, defaulted.UsesDefaultAdminCredentials())

	rotated := ServerConfig{AdminUsername: defaultAdminUsername, AdminPassword: "rotated"}
	require.False(testingT, rotated.UsesDefaultAdminCredentials())
}

func TestParseAllowedOrigins(testingT *testing.T) {
	testCases := []struct {
		caseName        string
		rawOrigins      string
		expectedOrigins []string
	}{
		{caseName: "wildcard", rawOrigins: "*", expectedOrigins: []string{"*"}},
		{caseName: "single origin", rawOrigins: "https://drilldowndynamics.com", expectedOrigins: []string{"https://drilldowndynamics.com"}},
		{caseName: "multiple origins with spaces", rawOrigins: "https://a.example.com, https://b.example.com", expectedOrigins: []string{"https://a.example.com", "https://b.example.com"}},
		{caseName: "empty falls back to wildcard", rawOrigins: "", expectedOrigins: []string{"*"}},
		{caseName: "stray commas ignored", rawOrigins: ",https://a.example.com,,", expectedOrigins: []string{"https://a.example.com"}},
	}

	for _, testCase := range testCases {
		testingT.Run(testCase.caseName, func(subtestT *testing.T) {
			require.Equal(subtestT, testCase.expectedOrigins, parseAllowedOrigins(testCase.rawOrigins))
		})
	}
}
