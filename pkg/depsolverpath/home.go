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

// Package depsolverpath calculates filesystem paths to depsolver's
// configuration.
package depsolverpath

const lp = lazypath("depsolver")

// ConfigPath returns the path where depsolver looks for configuration.
func ConfigPath(elem ...string) string { return lp.configPath(elem...) }

// ConfigFile returns the default path of the configuration file.
func ConfigFile() string {
	return ConfigPath("config.toml")
}
