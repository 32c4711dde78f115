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

// Package thermo loads thermodynamic reference data and builds the
// thermodynamics-based flux analysis (TFA) formulation over an opt.Problem.
package thermo

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compound is the thermodynamic reference record of one chemical species.
type Compound struct {
	ID      string
	Name    string
	Formula string
	// DeltaGf is the standard Gibbs energy of formation, kJ/mol.
	DeltaGf float64
	// Uncertainty is the estimation error on DeltaGf, kJ/mol.
	Uncertainty float64
}

// DB is an in-memory snapshot of a thermodynamic reference database.
type DB struct {
	compounds map[string]Compound
}

// LoadDB reads the SQLite reference database at path. The database must carry
// a `compounds` table with columns (id, name, formula, delta_gf, uncertainty).
func LoadDB(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("thermo: database %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("thermo: open database %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT id, name, formula, delta_gf, uncertainty FROM compounds`)
	if err != nil {
		return nil, fmt.Errorf("thermo: read compounds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := &DB{compounds: make(map[string]Compound)}
	for rows.Next() {
		var c Compound
		if err := rows.Scan(&c.ID, &c.Name, &c.Formula, &c.DeltaGf, &c.Uncertainty); err != nil {
			return nil, fmt.Errorf("thermo: scan compound: %w", err)
		}
		out.compounds[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("thermo: read compounds: %w", err)
	}
	return out, nil
}

// Compound returns the reference record for the given compound id.
func (db *DB) Compound(id string) (Compound, bool) {
	c, ok := db.compounds[id]
	return c, ok
}

// Len returns the number of compounds in the database.
func (db *DB) Len() int {
	return len(db.compounds)
}
