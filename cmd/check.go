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
	"os"

	"github.com/spf13/cobra"
)

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate run parameters and network topology without stepping",
	Run: func(cmd *cobra.Command, args []string) {
		paramFile, _ := cmd.Flags().GetString("inputParametersFile")
		rp := processParams(paramFile)
		_, net := buildRun(rp)
		if err := net.Validate(); err != nil {
			fmt.Printf("rejected: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("network ok: %d segments, %d nodes, %d fans, %d jet fans\n",
			len(net.Segments), len(net.Nodes), len(net.Fans), len(net.JetFans))
	},
}

func init() {
	rootCmd.AddCommand(CheckCmd)
	CheckCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for run parameters")
}
