package configuration

import (
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	commonconfig "github.com/coecms/qtools/internal/common/config"
	"github.com/coecms/qtools/internal/common/pbserrors"
)

// DefaultConfigName is the file looked for in the home directory when no path is given.
const DefaultConfigName = ".qtools"

// Load returns Default overlaid with the YAML file at path. With an empty path, $HOME/.qtools.yaml
// is read if it exists. The result is validated.
func Load(path string) (QtoolsConfig, error) {
	config := Default()
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return config, errors.Wrap(err, "error getting user home directory")
		}
		v.AddConfigPath(home)
		v.SetConfigName(DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// The default file is optional.
			log.Debugf("no %s.yaml in home directory, using defaults", DefaultConfigName)
			return config, validate(config)
		case path != "" && os.IsNotExist(errors.Cause(err)):
			return config, errors.WithStack(&pbserrors.ErrConfig{Name: "configuration file", Value: path})
		default:
			return config, errors.WithStack(&pbserrors.ErrConfig{
				Name:    "configuration file",
				Value:   v.ConfigFileUsed(),
				Message: err.Error(),
			})
		}
	}
	log.Debugf("using configuration file %s", v.ConfigFileUsed())

	// Lists from the file replace the defaults rather than being merged into them.
	if v.IsSet("nodePrefixes") {
		config.NodePrefixes = nil
	}
	if v.IsSet("pbs.sources") {
		config.Pbs.Sources = nil
	}
	if v.IsSet("pbs.nodeNamePrefixes") {
		config.Pbs.NodeNamePrefixes = nil
	}
	if err := v.Unmarshal(&config, commonconfig.CustomHooks...); err != nil {
		return config, errors.WithStack(&pbserrors.ErrConfig{
			Name:    "configuration file",
			Value:   v.ConfigFileUsed(),
			Message: err.Error(),
		})
	}
	return config, validate(config)
}

func validate(config QtoolsConfig) error {
	if err := config.Validate(); err != nil {
		commonconfig.LogValidationErrors(err)
		return commonconfig.AsConfigErrors(err)
	}
	return nil
}
