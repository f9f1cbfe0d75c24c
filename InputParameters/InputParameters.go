package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML run-parameters file
type RunParameters struct {
	Title           string  `yaml:"Title"`
	Dt              float64 `yaml:"Dt"`
	FinalTime       float64 `yaml:"FinalTime"`
	MaxVelocity     float64 `yaml:"MaxVelocity"`
	StabilityMargin float64 `yaml:"StabilityMargin"`
	Gamma           float64 `yaml:"Gamma"`
	RhoRef          float64 `yaml:"RhoRef"`
	PRef            float64 `yaml:"PRef"`
	FrictionModel   string  `yaml:"FrictionModel"`
	Kernel          string  `yaml:"Kernel"`
	ThermoEvery     int     `yaml:"ThermoEvery"`
	SampleInterval  float64 `yaml:"SampleInterval"`
	// First key is BC name/type, second is parameter name
	BCs map[string]map[int]map[string]float64 `yaml:"BCs"`
}

func (rp *RunParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, rp)
}

func (rp *RunParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("%8.5f\t\t= Dt\n", rp.Dt)
	fmt.Printf("%8.5f\t\t= FinalTime\n", rp.FinalTime)
	fmt.Printf("%8.3f\t\t= MaxVelocity\n", rp.MaxVelocity)
	fmt.Printf("%8.3f\t\t= StabilityMargin\n", rp.StabilityMargin)
	fmt.Printf("[%s]\t\t\t= Friction Model\n", rp.FrictionModel)
	fmt.Printf("[%s]\t\t\t= Kernel\n", rp.Kernel)
	keys := make([]string, len(rp.BCs))
	i := 0
	for k := range rp.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, rp.BCs[key])
	}
}
