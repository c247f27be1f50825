package param

import (
	"log"
	"strings"

	"gopkg.in/yaml.v3"
)

var Target = "local"

// Local params
var local = `
readv:
  max_iov: 1048576
  scratch_iov: 32
`

// Params for stress runs, with a tighter defensive ceiling.
var stress = `
readv:
  max_iov: 1024
  scratch_iov: 32
`

type Config struct {
	Readv struct {
		// Defensive ceiling on the segment count of one vectorized
		// call. Exceeding it is a fault, not a size error.
		MAX_IOV int `yaml:"max_iov"`
		// Segment descriptors held in the preallocated scratch area
		// before the copy-in falls back to a fresh allocation.
		SCRATCH_IOV int `yaml:"scratch_iov"`
	} `yaml:"readv"`
}

var Conf *Config

func init() {
	switch Target {
	case "stress":
		Conf = ReadConfig(stress)
	case "local":
		Conf = ReadConfig(local)
	default:
		log.Fatalf("Built for unknown target %s", Target)
	}
}

func ReadConfig(params string) *Config {
	config := &Config{}
	d := yaml.NewDecoder(strings.NewReader(params))
	if err := d.Decode(&config); err != nil {
		log.Fatalf("Yaml decode %v err %v\n", params, err)
	}

	return config
}
