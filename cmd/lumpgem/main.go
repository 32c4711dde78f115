// Copyright 2026 The LumpGEM Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// The lumpgem command lumps the non-core part of a metabolic model into one
// aggregate reaction per biomass building block and prints the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	log "github.com/golang/glog"

	"github.com/metabolica/lumpgem/lumpgem"
)

var (
	modelPath      = flag.String("model", "", "path to the metabolic model (.json, .yml, .xml)")
	thermoDBPath   = flag.String("thermodb", "", "path to the thermodynamic reference database")
	biomass        = flag.String("biomass", "", "comma-separated ids of the biomass building block reactions")
	coreSubsystems = flag.String("core_subsystems", "", "comma-separated names of the core subsystems")
	carbonUptake   = flag.Float64("carbon_uptake", 60, "carbon uptake bound, atoms per unit time")
	growthRate     = flag.Float64("growth_rate", 0.1, "growth lower bound applied per biomass reaction, 1/h")
)

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func run(ctx context.Context) error {
	lg, err := lumpgem.New(lumpgem.Config{
		ModelPath:        *modelPath,
		BiomassReactions: splitList(*biomass),
		CoreSubsystems:   splitList(*coreSubsystems),
		CarbonUptake:     *carbonUptake,
		GrowthRate:       *growthRate,
		ThermoDBPath:     *thermoDBPath,
	})
	if err != nil {
		return fmt.Errorf("failed to build the lumping model: %w", err)
	}

	for _, bio := range lg.BiomassReactions() {
		lump, err := lg.LumpReaction(ctx, bio.ID)
		if err != nil {
			return fmt.Errorf("failed to lump %s: %w", bio.ID, err)
		}
		fmt.Printf("%s: %s\n", lump.Biomass, lump.Equation())
		if len(lump.ActiveNonCore) > 0 {
			fmt.Printf("  active non-core: %s\n", strings.Join(lump.ActiveNonCore, ", "))
		}
	}
	return nil
}

func main() {
	flag.Parse()
	if *modelPath == "" || *thermoDBPath == "" || *biomass == "" {
		log.Exitf("flags -model, -thermodb and -biomass are required")
	}
	if err := run(context.Background()); err != nil {
		log.Exitf("lumpgem returned with error: %v", err)
	}
}
