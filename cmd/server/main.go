package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/httpapi"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/mailer"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/task"
)

const (
	commandUseName              = "server"
	commandShortDescription     = "Run the contact service"
	commandLongDescription      = "Launch the contact-form submission and admin console HTTP server"
	missingConfigurationMessage = "missing required configuration"
	loggerCreationErrorMessage  = "logger"

	flagNameApplicationAddress     = "app-addr"
	flagNameDatabaseDriverName     = "db-driver"
	flagNameDatabaseDataSourceName = "db-dsn"
	flagNameAdminUsername          = "admin-username"
	flagNameAdminPassword          = "admin-password"
	flagNameSMTPHost               = "smtp-host"
	flagNameSMTPPort               = "smtp-port"
	flagNameSMTPUsername           = "smtp-username"
	flagNameSMTPPassword           = "smtp-password"
	flagNameEmailFrom              = "email-from"
	flagNameEmailTo                = "email-to"
	flagNameAllowedOrigins         = "allowed-origins"

	environmentKeyApplicationAddress = "APP_ADDR"
	environmentKeyDatabaseDriver     = "DB_DRIVER"
	environmentKeyDatabaseDataSource = "DB_DSN"
	environmentKeyAdminUsername      = "ADMIN_USERNAME"
	environmentKeyAdminPassword      = "ADMIN_PASSWORD"
	environmentKeySMTPHost           = "SMTP_HOST"
	environmentKeySMTPPort           = "SMTP_PORT"
	environmentKeySMTPUsername       = "SMTP_USERNAME"
	environmentKeySMTPPassword       = "SMTP_PASSWORD"
	environmentKeyEmailFrom          = "EMAIL_FROM"
	environmentKeyEmailTo            = "EMAIL_TO"
	environmentKeyAllowedOrigins     = "ALLOWED_ORIGINS"

	defaultApplicationAddress = ":8080"
	defaultDatabaseDriverName = storage.DriverNameSQLite
	defaultAdminUsername      = "admin"
	defaultAdminPassword      = "drilldown2025"
	defaultAllowedOrigins     = "*"

	logEventListening            = "listening"
	logEventShuttingDown         = "shutting_down"
	logEventDefaultCredentials   = "default_admin_credentials_in_use"
	logEventSMTPNotConfigured    = "smtp_transport_not_configured"
	logFieldAddress              = "addr"
	loggerContextOpenDatabase    = "open_db"
	loggerContextAutoMigrate     = "migrate"
	loggerContextServer          = "server"
	readHeaderTimeoutSeconds     = 5
	shutdownGracePeriodSeconds   = 10
	unexpectedArgumentsMessage   = "unexpected command arguments"
	commandInitializationFailure = "failed to configure command"
	flagNotDefinedMessage        = "flag %s not defined"
	environmentApplyErrorMessage = "failed to apply environment configuration"
)

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress     string
	DatabaseDriverName     string
	DatabaseDataSourceName string
	AdminUsername          string
	AdminPassword          string
	SMTPHost               string
	SMTPPort               int
	SMTPUsername           string
	SMTPPassword           string
	EmailFrom              string
	EmailTo                string
	AllowedOrigins         string
}

// UsesDefaultAdminCredentials reports whether the deployment still runs with
// the shipped credentials, a hazard worth a startup warning.
func (configuration ServerConfig) UsesDefaultAdminCredentials() bool {
	return configuration.AdminUsername == defaultAdminUsername &&
		configuration.AdminPassword == defaultAdminPassword
}

// DatabaseOpener opens a database connection using the provided configuration.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

type flagBinding struct {
	environmentKey string
	flagName       string
}

var flagBindings = []flagBinding{
	{environmentKeyApplicationAddress, flagNameApplicationAddress},
	{environmentKeyDatabaseDriver, flagNameDatabaseDriverName},
	{environmentKeyDatabaseDataSource, flagNameDatabaseDataSourceName},
	{environmentKeyAdminUsername, flagNameAdminUsername},
	{environmentKeyAdminPassword, flagNameAdminPassword},
	{environmentKeySMTPHost, flagNameSMTPHost},
	{environmentKeySMTPPort, flagNameSMTPPort},
	{environmentKeySMTPUsername, flagNameSMTPUsername},
	{environmentKeySMTPPassword, flagNameSMTPPassword},
	{environmentKeyEmailFrom, flagNameEmailFrom},
	{environmentKeyEmailTo, flagNameEmailTo},
	{environmentKeyAllowedOrigins, flagNameAllowedOrigins},
}

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	application.configurationLoader.SetDefault(environmentKeyApplicationAddress, defaultApplicationAddress)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDriver, defaultDatabaseDriverName)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDataSource, "")
	application.configurationLoader.SetDefault(environmentKeyAdminUsername, defaultAdminUsername)
	application.configurationLoader.SetDefault(environmentKeyAdminPassword, defaultAdminPassword)
	application.configurationLoader.SetDefault(environmentKeySMTPHost, mailer.DefaultSMTPHost)
	application.configurationLoader.SetDefault(environmentKeySMTPPort, mailer.DefaultSMTPPort)
	application.configurationLoader.SetDefault(environmentKeySMTPUsername, "")
	application.configurationLoader.SetDefault(environmentKeySMTPPassword, "")
	application.configurationLoader.SetDefault(environmentKeyEmailFrom, mailer.DefaultFrom)
	application.configurationLoader.SetDefault(environmentKeyEmailTo, mailer.DefaultTo)
	application.configurationLoader.SetDefault(environmentKeyAllowedOrigins, defaultAllowedOrigins)
	application.configurationLoader.AutomaticEnv()

	commandFlags := command.Flags()
	commandFlags.String(flagNameApplicationAddress, defaultApplicationAddress, "address for the HTTP server to listen on")
	commandFlags.String(flagNameDatabaseDriverName, defaultDatabaseDriverName, "database driver (sqlite or postgres)")
	commandFlags.String(flagNameDatabaseDataSourceName, "", "database connection string")
	commandFlags.String(flagNameAdminUsername, defaultAdminUsername, "admin console username")
	commandFlags.String(flagNameAdminPassword, defaultAdminPassword, "admin console password")
	commandFlags.String(flagNameSMTPHost, mailer.DefaultSMTPHost, "SMTP server host")
	commandFlags.Int(flagNameSMTPPort, mailer.DefaultSMTPPort, "SMTP server port")
	commandFlags.String(flagNameSMTPUsername, "", "SMTP username; empty disables outbound email")
	commandFlags.String(flagNameSMTPPassword, "", "SMTP password; empty disables outbound email")
	commandFlags.String(flagNameEmailFrom, mailer.DefaultFrom, "sender address for outbound email")
	commandFlags.String(flagNameEmailTo, mailer.DefaultTo, "staff address notified about new submissions")
	commandFlags.String(flagNameAllowedOrigins, defaultAllowedOrigins, "comma separated CORS origins, or *")

	for _, binding := range flagBindings {
		if bindErr := application.bindFlag(commandFlags, binding.environmentKey, binding.flagName); bindErr != nil {
			return bindErr
		}
		if environmentErr := application.applyEnvironmentConfiguration(commandFlags, binding.environmentKey, binding.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentApplyErrorMessage, setErr)
	}

	return nil
}

func (application *ServerApplication) loadConfiguration() ServerConfig {
	return ServerConfig{
		ApplicationAddress:     application.configurationLoader.GetString(environmentKeyApplicationAddress),
		DatabaseDriverName:     strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDriver)),
		DatabaseDataSourceName: strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDataSource)),
		AdminUsername:          application.configurationLoader.GetString(environmentKeyAdminUsername),
		AdminPassword:          application.configurationLoader.GetString(environmentKeyAdminPassword),
		SMTPHost:               strings.TrimSpace(application.configurationLoader.GetString(environmentKeySMTPHost)),
		SMTPPort:               application.configurationLoader.GetInt(environmentKeySMTPPort),
		SMTPUsername:           strings.TrimSpace(application.configurationLoader.GetString(environmentKeySMTPUsername)),
		SMTPPassword:           application.configurationLoader.GetString(environmentKeySMTPPassword),
		EmailFrom:              strings.TrimSpace(application.configurationLoader.GetString(environmentKeyEmailFrom)),
		EmailTo:                strings.TrimSpace(application.configurationLoader.GetString(environmentKeyEmailTo)),
		AllowedOrigins:         application.configurationLoader.GetString(environmentKeyAllowedOrigins),
	}
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.DatabaseDriverName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDriverName)
	}

	if configuration.DatabaseDataSourceName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDataSourceName)
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig := application.loadConfiguration()
	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if serverConfig.UsesDefaultAdminCredentials() {
		logger.Warn(logEventDefaultCredentials)
	}

	database, databaseErr := application.databaseOpener(storage.Config{
		DriverName:     serverConfig.DatabaseDriverName,
		DataSourceName: serverConfig.DatabaseDataSourceName,
	})
	if databaseErr != nil {
		logger.Fatal(loggerContextOpenDatabase, zap.Error(databaseErr))
	}

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		logger.Fatal(loggerContextAutoMigrate, zap.Error(migrateErr))
	}

	submissionStore := storage.NewSubmissionStore(database)
	submissionMailer := mailer.NewSMTPMailer(mailer.Config{
		Host:     serverConfig.SMTPHost,
		Port:     serverConfig.SMTPPort,
		Username: serverConfig.SMTPUsername,
		Password: serverConfig.SMTPPassword,
		From:     serverConfig.EmailFrom,
		To:       serverConfig.EmailTo,
	}, logger)
	if !submissionMailer.Configured() {
		logger.Warn(logEventSMTPNotConfigured)
	}

	backgroundDispatcher := task.NewDispatcher(logger)
	adminCredentials := httpapi.AdminCredentials{
		Username: serverConfig.AdminUsername,
		Password: serverConfig.AdminPassword,
	}

	router := buildRouter(routerDependencies{
		logger:          logger,
		contactHandlers: httpapi.NewContactHandlers(submissionStore, logger, submissionMailer, backgroundDispatcher),
		adminHandlers:   httpapi.NewAdminHandlers(submissionStore, logger, submissionMailer, adminCredentials),
		credentials:     adminCredentials,
		allowedOrigins:  parseAllowedOrigins(serverConfig.AllowedOrigins),
	})

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	shutdownContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	serveErrors := make(chan error, 1)
	go func() {
		serveErrors <- httpServer.ListenAndServe()
	}()

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress))

	select {
	case serveErr := <-serveErrors:
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Fatal(loggerContextServer, zap.Error(serveErr))
		}
	case <-shutdownContext.Done():
		logger.Info(logEventShuttingDown)
		gracePeriod, cancelGracePeriod := context.WithTimeout(context.Background(), shutdownGracePeriodSeconds*time.Second)
		defer cancelGracePeriod()
		if shutdownErr := httpServer.Shutdown(gracePeriod); shutdownErr != nil {
			logger.Error(loggerContextServer, zap.Error(shutdownErr))
		}
	}

	backgroundDispatcher.Wait()
	return nil
}

func main() {
	_ = godotenv.Load()

	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
