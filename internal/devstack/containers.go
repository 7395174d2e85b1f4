// Package devstack starts the local development stack with testcontainers.
// It is used by the devstack executable and by guarded integration tests.
// Expects environment variables to be loaded from .env files.
package devstack

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

type Stack struct {
	Network        *testcontainers.DockerNetwork
	DBContainer    testcontainers.Container
	RedisContainer testcontainers.Container
	APIContainer   testcontainers.Container

	apiPort nat.Port
}

// APIBaseURL returns the host-reachable base URL of the API container
func (s *Stack) APIBaseURL(ctx context.Context) (string, error) {
	host, err := s.APIContainer.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := s.APIContainer.MappedPort(ctx, s.apiPort)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%s", host, port.Port()), nil
}

func (s *Stack) Terminate(t *testing.T) {
	ctx := context.Background()
	if s.APIContainer != nil {
		if err := s.APIContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate API: %v", err)
		}
	}
	if s.RedisContainer != nil {
		if err := s.RedisContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Redis: %v", err)
		}
	}
	if s.DBContainer != nil {
		if err := s.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if s.Network != nil {
		if err := s.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// Start brings up database, redis and API containers on a shared network.
// Container images, credentials and ports come from the environment.
func Start(t *testing.T) (*Stack, error) {
	ctx := context.Background()
	stack := &Stack{}

	// Create a network
	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	stack.Network = nw
	networkName := nw.Name

	// Create and start the database container
	dbType := os.Getenv("DB_TYPE")
	dbNetworkName := os.Getenv("DB_HOST")
	tcpDbPort, err := nat.NewPort("tcp", os.Getenv("DB_PORT"))
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{string(tcpDbPort)},
			Env:          dbInitEnv(dbType),
			WaitingFor:   wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:     []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {dbNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, "Failed to start database")
	}
	stack.DBContainer = dbContainer

	// Initialize the database
	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	switch dbType {
	case "mysql", "mariadb":
		if err := initMySQL(t, stack, dbHost, dbPort); err != nil {
			stack.Terminate(t)
			exitWithError(t, err, "Failed to initialize database")
		}
	default:
		stack.Terminate(t)
		exitWithError(t, fmt.Errorf("unsupported DB_TYPE %q", dbType), "Failed to initialize database")
	}

	// Create and start the Redis container for the sentiment cache
	redisNetworkName := "redis"
	tcpRedisPort, err := nat.NewPort("tcp", "6379")
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, "Failed to create Redis port")
	}
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{string(tcpRedisPort)},
			WaitingFor:   wait.ForListeningPort(tcpRedisPort).WithStartupTimeout(30 * time.Second),
			Networks:     []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {redisNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, "Failed to start Redis")
	}
	stack.RedisContainer = redisContainer

	imageName := "auralys-api:latest"

	exists, err := imageExists(ctx, imageName)
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, "Failed to check if image exists")
	}

	apiPortNumber := os.Getenv("PORT")
	tcpAPIPort, err := nat.NewPort("tcp", apiPortNumber)
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, "Failed to create API port")
	}
	stack.apiPort = tcpAPIPort

	apiContainerRequest := testcontainers.ContainerRequest{
		ExposedPorts: []string{string(tcpAPIPort)},
		Env: map[string]string{
			"APP_ENV":             "development",
			"PORT":                apiPortNumber,
			"DB_TYPE":             dbType,
			"DB_HOST":             dbNetworkName,
			"DB_PORT":             os.Getenv("DB_PORT"),
			"DB_DATABASE":         os.Getenv("DB_DATABASE"),
			"DB_USER":             os.Getenv("DB_USER"),
			"DB_PASSWORD":         os.Getenv("DB_PASSWORD"),
			"DB_CONNECTION_LIMIT": os.Getenv("DB_CONNECTION_LIMIT"),
			"APP_SECRET_KEY":      os.Getenv("APP_SECRET_KEY"),
			"REDIS_ADDR":          fmt.Sprintf("%s:6379", redisNetworkName),
			"NLP_API_URL":         os.Getenv("NLP_API_URL"),
			"NLP_API_TOKEN":       os.Getenv("NLP_API_TOKEN"),
			"NLP_MODEL":           os.Getenv("NLP_MODEL"),
		},
		WaitingFor: wait.ForHTTP("/health").WithPort(tcpAPIPort).WithStartupTimeout(30 * time.Second),
		Networks:   []string{networkName},
	}

	if !exists {
		logMessage(t, "Image %s does not exist, building...", imageName)

		buildContext := os.Getenv("DEVSTACK_BUILD_CONTEXT")
		if buildContext == "" {
			buildContext = "."
		}

		reaperSessionID := uuid.New().String()
		imageNameParts := strings.Split(imageName, ":")
		apiContainerRequest.FromDockerfile = testcontainers.FromDockerfile{
			Context:    buildContext,
			Dockerfile: "Dockerfile",
			Repo:       imageNameParts[0],
			Tag:        imageNameParts[1],
			KeepImage:  true,
			BuildArgs: map[string]*string{
				"RESOURCE_REAPER_SESSION_ID": &reaperSessionID,
			},
			PrintBuildLog: true,
		}
	} else {
		logMessage(t, "Image %s exists, reusing...", imageName)
		apiContainerRequest.Image = imageName
	}

	// Create and start the API container
	apiContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: apiContainerRequest,
		Started:          true,
	})
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, "Failed to start API")
	}
	stack.APIContainer = apiContainer

	// Log the localhost and mapped ports for test processes
	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, tcpRedisPort)
	logMessage(t, "REDIS_ADDR=%s:%s", redisHost, redisPort.Port())

	apiHost, _ := apiContainer.Host(ctx)
	apiPort, _ := apiContainer.MappedPort(ctx, tcpAPIPort)
	logMessage(t, "BASE_URL=http://%s:%s", apiHost, apiPort.Port())

	logMessage(t, "Auralys devstack started successfully")
	return stack, nil
}

func dbInitEnv(dbType string) map[string]string {
	switch dbType {
	case "mariadb", "mysql":
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
			"MYSQL_DATABASE":      os.Getenv("DB_DATABASE"),
			"MYSQL_USER":          os.Getenv("DB_USER"),
			"MYSQL_PASSWORD":      os.Getenv("DB_PASSWORD"),
		}
	}
	return nil
}

func initMySQL(t *testing.T, stack *Stack, dbHost string, dbPort nat.Port) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", os.Getenv("DB_ROOT_PASSWORD"), dbHost, dbPort.Port()))
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, "Failed to connect for setup")
	}
	defer db.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, "Database not ready after 30 seconds")
	}

	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", os.Getenv("DB_DATABASE")))
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, fmt.Sprintf("Failed to create %s", os.Getenv("DB_DATABASE")))
	}
	_, err = db.Exec(fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD")))
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, fmt.Sprintf("Failed to create user %s", os.Getenv("DB_USER")))
	}
	_, err = db.Exec(fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO '%s'@'%%'", os.Getenv("DB_DATABASE"), os.Getenv("DB_USER")))
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, fmt.Sprintf("Failed to grant privileges on %s", os.Getenv("DB_DATABASE")))
	}
	_, err = db.Exec("FLUSH PRIVILEGES")
	if err != nil {
		stack.Terminate(t)
		exitWithError(t, err, "Failed to flush privileges")
	}

	return nil
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
