package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Form holds the path of the form options file
type Form struct {
	Path string
}

// Flags returns CLI flags for Form configuration
func (f *Form) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "form-config",
			Usage:       "YAML file with categories, severities and municipalities offered by the form",
			Category:    "Form",
			Sources:     cli.EnvVars("KUJO_FORM_CONFIG"),
			Destination: &f.Path,
		},
	}
}

// Configure loads the form options, falling back to the built-in ones without a file
func (f *Form) Configure(ctx context.Context) (*model.FormConfig, error) {
	if !f.IsConfigured() {
		ctxlog.From(ctx).Debug("Using built-in form options")
		return model.DefaultFormConfig(), nil
	}
	return LoadFormConfigFromFile(f.Path)
}

// IsConfigured checks if a form options file is given
func (f *Form) IsConfigured() bool {
	return f.Path != ""
}

// LogValue returns structured log value
func (f Form) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", f.Path),
	)
}

// LoadFormConfigFromFile loads form options from YAML file
func LoadFormConfigFromFile(path string) (*model.FormConfig, error) {
	if path == "" {
		return nil, goerr.New("configuration file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "configuration file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read configuration file",
			goerr.V("path", path))
	}

	var config model.FormConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse YAML configuration",
			goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid configuration",
			goerr.V("path", path))
	}

	return &config, nil
}
