package helpers

import (
	"os"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"gopkg.in/yaml.v3"
)

// ReadYamlConfigFile reads the yaml file and prepares the config with default values.
func ReadYamlConfigFile(cnfFile string) (*config.AppConfig, error) {
	yamlFile, err := os.ReadFile(cnfFile)
	if err != nil {
		return nil, err
	}

	appCnf := new(config.AppConfig)
	err = yaml.Unmarshal(yamlFile, appCnf)
	if err != nil {
		return nil, err
	}

	// get current working dir
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	// set the root path
	appCnf.RootWorkingDir = wd

	return config.New(appCnf)
}
