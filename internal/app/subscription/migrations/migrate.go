package migrations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	admin "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instanceadmin "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Options identifies the database to bootstrap and where its DDL lives.
type Options struct {
	ProjectID  string
	InstanceID string
	DatabaseID string
	// Dir holds the *.sql files. Empty means the migrations directory at the
	// module root, found by FindDir.
	Dir string
	// EmulatorHost points the admin clients at a Spanner emulator.
	EmulatorHost string
}

// DatabasePath returns the fully qualified database name.
func (o Options) DatabasePath() string {
	return fmt.Sprintf("projects/%s/instances/%s/databases/%s", o.ProjectID, o.InstanceID, o.DatabaseID)
}

func (o Options) instancePath() string {
	return fmt.Sprintf("projects/%s/instances/%s", o.ProjectID, o.InstanceID)
}

// ClientOptions returns the client options needed to reach the emulator, or
// none for production Spanner.
func ClientOptions(emulatorHost string) []option.ClientOption {
	if emulatorHost == "" {
		return nil
	}
	// gRPC endpoints carry no scheme
	endpoint := strings.TrimPrefix(strings.TrimPrefix(emulatorHost, "http://"), "https://")
	return []option.ClientOption{option.WithEndpoint(endpoint), option.WithoutAuthentication()}
}

// Run creates the instance and database when missing and applies every DDL
// statement found in the migrations directory.
func Run(ctx context.Context, opts Options, logger *zap.Logger) error {
	logger = logger.With(
		zap.String("project", opts.ProjectID),
		zap.String("instance", opts.InstanceID),
		zap.String("database", opts.DatabaseID),
	)

	dir := opts.Dir
	if dir == "" {
		found, err := FindDir()
		if err != nil {
			return fmt.Errorf("failed to find migrations directory: %w", err)
		}
		dir = found
	}
	statements, err := LoadStatements(dir)
	if err != nil {
		return err
	}
	if len(statements) == 0 {
		logger.Info("no DDL statements found", zap.String("dir", dir))
		return nil
	}

	clientOpts := ClientOptions(opts.EmulatorHost)
	if opts.EmulatorHost != "" {
		logger.Info("using spanner emulator", zap.String("emulator_host", opts.EmulatorHost))
	}

	if err := ensureInstance(ctx, opts, clientOpts, logger); err != nil {
		return err
	}

	adminClient, err := admin.NewDatabaseAdminClient(ctx, clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create database admin client: %w", err)
	}
	defer adminClient.Close()

	_, err = adminClient.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: opts.DatabasePath()})
	if err != nil {
		if st, ok := status.FromError(err); !ok || st.Code() != codes.NotFound {
			return fmt.Errorf("failed to check database existence: %w", err)
		}

		logger.Info("creating database with migrations", zap.Int("statements", len(statements)))
		op, err := adminClient.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
			Parent:          opts.instancePath(),
			CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", opts.DatabaseID),
			ExtraStatements: statements,
		})
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		if _, err := op.Wait(ctx); err != nil {
			return fmt.Errorf("database creation failed: %w", err)
		}
		logger.Info("database created")
		return nil
	}

	logger.Info("applying DDL to existing database", zap.Int("statements", len(statements)))
	op, err := adminClient.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
		Database:   opts.DatabasePath(),
		Statements: statements,
	})
	if err != nil {
		return fmt.Errorf("failed to start migrations: %w", err)
	}
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to complete migrations: %w", err)
	}
	logger.Info("migrations applied")
	return nil
}

func ensureInstance(ctx context.Context, opts Options, clientOpts []option.ClientOption, logger *zap.Logger) error {
	client, err := instanceadmin.NewInstanceAdminClient(ctx, clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer client.Close()

	_, err = client.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: opts.instancePath()})
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); !ok || st.Code() != codes.NotFound {
		return fmt.Errorf("failed to check instance existence: %w", err)
	}

	logger.Info("creating instance")
	op, err := client.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     "projects/" + opts.ProjectID,
		InstanceId: opts.InstanceID,
		Instance: &instancepb.Instance{
			DisplayName: opts.InstanceID,
			// The emulator accepts any config name
			Config:    fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", opts.ProjectID),
			NodeCount: 1,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create instance: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("instance creation failed: %w", err)
	}
	return nil
}

// FindDir walks up from the working directory to the module root (the
// directory holding go.mod) and returns its migrations directory.
func FindDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			migrationsPath := filepath.Join(dir, "migrations")
			if _, err := os.Stat(migrationsPath); err != nil {
				return "", fmt.Errorf("migrations directory not found at %s", migrationsPath)
			}
			return migrationsPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Deployed binaries run without a go.mod next to them
	migrationsPath := filepath.Join(wd, "migrations")
	if _, err := os.Stat(migrationsPath); err == nil {
		return migrationsPath, nil
	}
	return "", fmt.Errorf("could not find migrations directory (searched from %s)", wd)
}

// LoadStatements reads every *.sql file in dir in lexical order and returns
// their DDL statements.
func LoadStatements(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	var statements []string
	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		statements = append(statements, ParseDDL(string(sql))...)
	}
	return statements, nil
}

// ParseDDL splits a SQL file into statements without trailing semicolons.
// Full-line and inline "--" comments are dropped.
func ParseDDL(sql string) []string {
	var statements []string
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSuffix(strings.TrimSpace(current.String()), ";")
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if idx := strings.Index(trimmed, "--"); idx >= 0 {
			trimmed = strings.TrimSpace(trimmed[:idx])
		}
		if trimmed == "" {
			continue
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(trimmed)

		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}
	flush()

	return statements
}
