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

/*
Package repo loads the input of a resolution run: the repository of
packages, the initial configuration and the constraints. Files may be JSON
or YAML.

A repository file is a list of records:

	- name: A
	  version: "1"
	  size: 10
	  depends: [["B", "C>=2"], "D"]
	  conflicts: ["E<3"]
	  provides: ["V=1"]

The initial file lists installed packages as "name=version" strings. The
constraints file is either a list of directive strings or an object with
"directives" and "criteria" keys.
*/
package repo
