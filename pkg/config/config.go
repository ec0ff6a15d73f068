package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde
// env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	Tenants []TenantConfig
}

// AppConfig configuración general.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// TenantConfig descriptor de un campus: identificador, nombre visible y
// DSN del almacén físico dedicado. Inmutable después de la carga.
type TenantConfig struct {
	ID      string
	Name    string
	DSN     string
	Enabled bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente
// desde archivo .env/config.env). TENANTS lista los códigos de campus
// separados por coma; cada campus aporta TENANT_<CODE>_DSN,
// TENANT_<CODE>_NAME y TENANT_<CODE>_ENABLED.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "admission-core"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
	}

	for _, code := range splitCSV(getString(v, "TENANTS", "")) {
		key := strings.ToUpper(code)
		tc := TenantConfig{
			ID:      strings.ToLower(code),
			Name:    getString(v, fmt.Sprintf("TENANT_%s_NAME", key), code),
			DSN:     getString(v, fmt.Sprintf("TENANT_%s_DSN", key), ""),
			Enabled: getBool(v, fmt.Sprintf("TENANT_%s_ENABLED", key), true),
		}
		if tc.DSN == "" {
			return nil, fmt.Errorf("campus %q sin TENANT_%s_DSN", code, key)
		}
		cfg.Tenants = append(cfg.Tenants, tc)
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
