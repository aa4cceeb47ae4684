package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("postgres requires a password", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		t.Setenv("POSTGRES_PASSWORD", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("postgres defaults", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "")
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("CHAT_BACKEND_URL", "http://chat:5000/")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, StoreDriverPostgres, cfg.Repositories.Driver)
		assert.Equal(t, "8091", cfg.ServerPort)
		assert.Equal(t, "http://chat:5000", cfg.Chat.BackendURL)
		assert.Equal(t, 60*time.Second, cfg.Chat.Timeout)
	})

	t.Run("mongo does not need postgres credentials", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "Mongo")
		t.Setenv("POSTGRES_PASSWORD", "")
		t.Setenv("MONGODB_URI", "mongodb://db:27017")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, StoreDriverMongo, cfg.Repositories.Driver)
		assert.Equal(t, "Location-Description", cfg.Repositories.Mongo.Database)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "sqlite")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad chat timeout", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		t.Setenv("CHAT_TIMEOUT", "soon")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("pprof can be disabled with an empty address", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		t.Setenv("PPROF_ADDR", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Empty(t, cfg.Observability.PprofAddr)

		require.NoError(t, os.Unsetenv("PPROF_ADDR"))
		cfg, err = Load()
		require.NoError(t, err)
		assert.Equal(t, ":6060", cfg.Observability.PprofAddr)
	})

	t.Run("cors origins", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.loci.example/ ,, http://localhost:3000")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"https://app.loci.example", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
	})

	t.Run("session secret default is flagged", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		t.Setenv("SESSION_SECRET", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.UsesDevSessionSecret())

		t.Setenv("SESSION_SECRET", "a-real-secret")
		cfg, err = Load()
		require.NoError(t, err)
		assert.False(t, cfg.UsesDevSessionSecret())
	})
}
