/*
Copyright © 2021 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/ventworks/ductflow/InputParameters"
	"github.com/ventworks/ductflow/moc"
	"github.com/ventworks/ductflow/network"
	"github.com/ventworks/ductflow/results"
)

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Integrate a ventilation network through time",
	Long: `
Runs the characteristic integrator on a network. The network description is
resolved by external tooling; without one, a built-in demonstration tunnel
(two reservoir portals, one jet fan) is run with the given parameters.

ductflow run -I params.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		paramFile, _ := cmd.Flags().GetString("inputParametersFile")
		prof, _ := cmd.Flags().GetBool("profile")
		if prof {
			defer profile.Start(profile.CPUProfile).Stop()
		}
		rp := processParams(paramFile)
		cfg, net := buildRun(rp)
		sim, err := moc.New(net, cfg)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("Unsteady 1D Network Flow\nSolving %q\n", rp.Title)
		fmt.Printf("Dt = %8.4f, FinalTime = %8.2f, FrictionModel = %s, Kernel = %s\n\n",
			cfg.Dt, cfg.FinalTime, cfg.FrictionModel, sim.Kern.Name())
		rec := results.NewRecorder(rp.SampleInterval)
		if err := sim.Run(rec.Observe); err != nil {
			fmt.Printf("run failed: %s\n", err.Error())
			os.Exit(1)
		}
		sm := results.Summarize(sim)
		fmt.Printf("steps = %d, t = %8.2f, u in [%6.3f, %6.3f] mean %6.3f, warnings = %d\n",
			sm.Steps, sm.FinalTime, sm.UMin, sm.UMax, sm.UMean, sm.Warnings)
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for run parameters like:\n\t- Dt\n\t- FinalTime\n\t- FrictionModel")
	RunCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
}

func processParams(path string) (rp *InputParameters.RunParameters) {
	rp = &InputParameters.RunParameters{
		Title:           "Demonstration Tunnel",
		Dt:              0.02,
		FinalTime:       60,
		MaxVelocity:     15,
		StabilityMargin: 1.1,
		Gamma:           1.4,
		RhoRef:          1.2,
		PRef:            101325,
		FrictionModel:   "Colebrook",
		Kernel:          "Reference",
		ThermoEvery:     10,
		SampleInterval:  1,
	}
	if path == "" {
		return
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "500m Road Tunnel"
Dt: 0.02
FinalTime: 120
MaxVelocity: 15
FrictionModel: Colebrook # or Fixed, Haaland, SwameeJain, Moody
Kernel: Optimized
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if err = rp.Parse(data); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	rp.Print()
	return
}

// buildRun maps the parameters onto a solver config and, standing in for the
// external network builder, assembles the demonstration tunnel.
func buildRun(rp *InputParameters.RunParameters) (moc.Config, *network.Network) {
	fm, err := network.NewFrictionModel(rp.FrictionModel)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	cfg := moc.Config{
		Dt:              rp.Dt,
		FinalTime:       rp.FinalTime,
		MaxVelocity:     rp.MaxVelocity,
		StabilityMargin: rp.StabilityMargin,
		FrictionModel:   fm,
		KernelName:      rp.Kernel,
		ThermoEvery:     rp.ThermoEvery,
	}
	gas := network.Gas{Gamma: rp.Gamma, RhoRef: rp.RhoRef, PRef: rp.PRef}
	if gas.Gamma == 0 {
		gas = network.AirAtRest
	}

	seg := &network.Segment{
		ID: "tunnel", Length: 500, Area: 50, Perimeter: 28,
		Roughness: 0.003, FixedFactor: 0.025,
	}
	net := &network.Network{Gas: gas, Segments: []*network.Segment{seg}}
	net.SetBoundary(seg, network.BackEnd,
		&network.BoundaryCondition{Kind: network.ReservoirPressure, Value: gas.PRef, ZetaIn: 0.5, ZetaOut: 0})
	net.SetBoundary(seg, network.ForwardEnd,
		&network.BoundaryCondition{Kind: network.ReservoirPressure, Value: gas.PRef, ZetaIn: 0.5, ZetaOut: 0})
	net.JetFans = []*network.JetFan{{
		ID: "jf1", Seg: seg, Position: 100, NozzleArea: 0.6, JetVelocity: 30,
		Mode: network.JetDistributed, SpreadLength: 60, Speed: network.ConstantSpeed(1),
	}}
	return cfg, net
}
