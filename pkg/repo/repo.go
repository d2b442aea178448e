/*
Copyright SUSE LLC.

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

package repo

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// Default file names inside a problem directory.
const (
	RepositoryFile  = "repository.json"
	InitialFile     = "initial.json"
	ConstraintsFile = "constraints.json"
)

// Record is a package as written in a repository file.
type Record struct {
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	Size      int64      `json:"size,omitempty"`
	Depends   []Conjunct `json:"depends,omitempty"`
	Conflicts []string   `json:"conflicts,omitempty"`
	Provides  []string   `json:"provides,omitempty"`
}

// Conjunct is one element of a dependency list: a disjunction of atoms.
// It is written either as a list of atoms or as a single atom.
type Conjunct []string

func (c *Conjunct) UnmarshalJSON(data []byte) error {
	var atom string
	if err := json.Unmarshal(data, &atom); err == nil {
		*c = Conjunct{atom}
		return nil
	}
	var atoms []string
	if err := json.Unmarshal(data, &atoms); err != nil {
		return errors.Errorf("dependency must be an atom or a list of atoms, got %s", data)
	}
	*c = atoms
	return nil
}

// Constraints is the request of a run.
type Constraints struct {
	Directives []string `json:"directives"`
	// Criteria is a comma separated criteria list, empty for the default.
	Criteria string `json:"criteria,omitempty"`
}

func (c *Constraints) UnmarshalJSON(data []byte) error {
	var directives []string
	if err := json.Unmarshal(data, &directives); err == nil {
		*c = Constraints{Directives: directives}
		return nil
	}

	var obj struct {
		Directives []string        `json:"directives"`
		Criteria   json.RawMessage `json:"criteria"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.New("constraints must be a list of directives or an object with directives and criteria")
	}
	*c = Constraints{Directives: obj.Directives}
	if len(obj.Criteria) == 0 || string(obj.Criteria) == "null" {
		return nil
	}
	if err := json.Unmarshal(obj.Criteria, &c.Criteria); err == nil {
		return nil
	}
	var list []string
	if err := json.Unmarshal(obj.Criteria, &list); err != nil {
		return errors.Errorf("criteria must be a string or a list of strings, got %s", obj.Criteria)
	}
	c.Criteria = strings.Join(list, ",")
	return nil
}

// Problem is the raw input of one run.
type Problem struct {
	Name        string
	Repository  []*Record
	Initial     []string
	Constraints *Constraints
	// Digest identifies the raw input bytes, for logging.
	Digest uint64
}

// ParseRepository decodes a repository file.
func ParseRepository(data []byte) ([]*Record, error) {
	records := []*Record{}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "decoding repository")
	}
	return records, nil
}

// ParseInitial decodes an initial configuration file.
func ParseInitial(data []byte) ([]string, error) {
	initial := []string{}
	if err := yaml.Unmarshal(data, &initial); err != nil {
		return nil, errors.Wrap(err, "decoding initial configuration")
	}
	return initial, nil
}

// ParseConstraints decodes a constraints file.
func ParseConstraints(data []byte) (*Constraints, error) {
	c := &Constraints{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "decoding constraints")
	}
	if c.Directives == nil {
		c.Directives = []string{}
	}
	return c, nil
}

// LoadFiles reads a problem from its three files. An empty initial or
// constraints path stands for an empty initial configuration or an empty
// request.
func LoadFiles(repository, initial, constraints string) (*Problem, error) {
	d := xxhash.New()
	read := func(path string) ([]byte, error) {
		b, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't load %s", path)
		}
		// xxhash.Digest writes never fail
		_, _ = d.Write(b)
		return b, nil
	}

	p := &Problem{
		Name:        filepath.Base(filepath.Dir(repository)),
		Initial:     []string{},
		Constraints: &Constraints{Directives: []string{}},
	}
	b, err := read(repository)
	if err != nil {
		return nil, err
	}
	if p.Repository, err = ParseRepository(b); err != nil {
		return nil, errors.Wrap(err, repository)
	}
	if initial != "" {
		if b, err = read(initial); err != nil {
			return nil, err
		}
		if p.Initial, err = ParseInitial(b); err != nil {
			return nil, errors.Wrap(err, initial)
		}
	}
	if constraints != "" {
		if b, err = read(constraints); err != nil {
			return nil, err
		}
		if p.Constraints, err = ParseConstraints(b); err != nil {
			return nil, errors.Wrap(err, constraints)
		}
	}
	p.Digest = d.Sum64()
	return p, nil
}

// LoadDir reads a problem directory. The repository file is required; a
// missing initial or constraints file means an empty one.
func LoadDir(dir string) (*Problem, error) {
	optional := func(name string) (string, error) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", nil
			}
			return "", errors.Wrapf(err, "couldn't stat %s", path)
		}
		return path, nil
	}
	initial, err := optional(InitialFile)
	if err != nil {
		return nil, err
	}
	constraints, err := optional(ConstraintsFile)
	if err != nil {
		return nil, err
	}
	p, err := LoadFiles(filepath.Join(dir, RepositoryFile), initial, constraints)
	if err != nil {
		return nil, err
	}
	p.Name = filepath.Base(dir)
	return p, nil
}
