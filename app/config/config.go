package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// GisCfg tham số gọi dịch vụ gợi ý
type GisCfg struct {
	AppName          string `yaml:"app_name" json:"app_name"`
	AddressType      int    `yaml:"address_type" json:"address_type"`
	ChildrenPageSize int    `yaml:"children_page_size" json:"children_page_size"`
	RequestTimeoutMs int    `yaml:"request_timeout_ms" json:"request_timeout_ms"`
}

// ResolverCfg tham số của engine giải quyết
type ResolverCfg struct {
	PageStep            int    `yaml:"page_step" json:"page_step"`
	MaxPageSize         int    `yaml:"max_page_size" json:"max_page_size"`
	CountryCode         string `yaml:"country_code" json:"country_code"`
	RegionCodeCacheSize int    `yaml:"region_code_cache_size" json:"region_code_cache_size"`
}

type ResolverConfig struct {
	Gis      GisCfg      `yaml:"gis" json:"gis"`
	Resolver ResolverCfg `yaml:"resolver" json:"resolver"`
}

var C = Default()

// Default cấu hình khi không có file
func Default() ResolverConfig {
	return ResolverConfig{
		Gis: GisCfg{
			AppName:          "ПК МС",
			AddressType:      1,
			ChildrenPageSize: 300,
			RequestTimeoutMs: 30000,
		},
		Resolver: ResolverCfg{
			PageStep:            500,
			MaxPageSize:         20000,
			CountryCode:         "643",
			RegionCodeCacheSize: 256,
		},
	}
}

// Load đọc file YAML vào C. File không tồn tại thì giữ mặc định.
func Load(path string) error {
	cfg := Default()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return err
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return fmt.Errorf("lỗi parse %s: %w", path, err)
		}
	}

	// ENV overrides
	if v := os.Getenv("GIS_APP_NAME"); v != "" {
		cfg.Gis.AppName = v
	}
	overrideInt("GIS_REQUEST_TIMEOUT_MS", &cfg.Gis.RequestTimeoutMs)
	overrideInt("RESOLVER_PAGE_STEP", &cfg.Resolver.PageStep)
	overrideInt("RESOLVER_MAX_PAGE_SIZE", &cfg.Resolver.MaxPageSize)

	C = cfg
	return nil
}

func overrideInt(key string, dst *int) {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		*dst = n
	}
}

func RequestTimeout() time.Duration {
	return time.Duration(C.Gis.RequestTimeoutMs) * time.Millisecond
}
