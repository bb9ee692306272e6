package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// LoadConfig собирает конфигурацию: значения по умолчанию, затем filePath
// (если файл есть), затем <name>.local.<ext> поверх, затем секреты из окружения.
// Пустой filePath или отсутствующий файл — не ошибка.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		found, err := decodeFile(filePath, cfg)
		if err != nil {
			return nil, err
		}
		if !found {
			log.Printf("Config file %s not found, using defaults", filePath)
		}

		var override Config
		localPath := localName(filePath)
		found, err = decodeFile(localPath, &override)
		if err != nil {
			return nil, err
		}
		if found {
			// нулевые значения из local-файла не перекрывают базовые
			if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("failed to merge %s: %w", localPath, err)
			}
			log.Printf("Merged config with local overrides from %s", localPath)
		}

		cfg.dir = filepath.Dir(filePath)
	}

	cfg.Credentials = LoadCredentials()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return cfg, nil
}

func decodeFile(filePath string, out *Config) (bool, error) {
	file, err := os.Open(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			// Логируем ошибку, но не возвращаем — иначе перезапишем основную ошибку
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to parse config %s: %w", filePath, err)
	}

	return true, nil
}

// localName: configs/config.yaml -> configs/config.local.yaml (файл переопределений)
func localName(filePath string) string {
	ext := filepath.Ext(filePath)
	return strings.TrimSuffix(filePath, ext) + ".local" + ext
}
