package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"linkedin-digest/internal/scraper"
)

// LoadSelectors загружает селекторы из YAML файла поверх селекторов по умолчанию
func LoadSelectors(filePath string) (*scraper.Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	// Проверяем существование файла
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("selectors file not found: %s: %w", filePath, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close selectors file: %v\n", closeErr)
		}
	}()

	selectors := scraper.DefaultSelectors()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(selectors); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	if err := validateSelectors(selectors); err != nil {
		return nil, err
	}

	return selectors, nil
}

// Selectors возвращает селекторы из selectors_file или встроенные.
// Относительный путь считается от каталога файла конфигурации.
func (c *Config) Selectors() (*scraper.Selectors, error) {
	if c.SelectorsFile == "" {
		return scraper.DefaultSelectors(), nil
	}

	filePath := c.SelectorsFile
	if !filepath.IsAbs(filePath) && c.dir != "" {
		filePath = filepath.Join(c.dir, filePath)
	}

	return LoadSelectors(filePath)
}

// validateSelectors проверяет минимальный набор селекторов
func validateSelectors(s *scraper.Selectors) error {
	if s.UsernameField == "" {
		return fmt.Errorf("username_field is required")
	}
	if s.PasswordField == "" {
		return fmt.Errorf("password_field is required")
	}
	if s.PostContainer == "" {
		return fmt.Errorf("post_container is required")
	}
	if s.ShowMore == "" {
		return fmt.Errorf("show_more is required")
	}
	if s.PostText == "" {
		return fmt.Errorf("post_text is required")
	}

	return nil
}
