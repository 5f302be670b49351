package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config mirrors the flag surface so a pipeline can be described in one file
type Config struct {
	File     string   `yaml:"file"`
	Out      string   `yaml:"out"`
	Tags     []string `yaml:"tags"`
	Contract bool     `yaml:"contract"`
	Collapse bool     `yaml:"collapse"`
	GeoJSON  string   `yaml:"geojson"`
}

func ReadConfig(file string) (Config, error) {
	var config Config
	data, err := os.ReadFile(file)
	if err != nil {
		return config, errors.Wrap(err, "Can't read config file")
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return config, errors.Wrap(err, "Can't parse config file")
	}
	return config, nil
}
