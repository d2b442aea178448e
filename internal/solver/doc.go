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
Solver resolves package dependency problems: given a repository of package
versions, the initially installed configuration and a request, it finds a
target configuration and the commands that lead to it.

A package is a unique (name, version) pair, together with its dependency
formula (a conjunction of disjunctions of atoms), its conflicts and the
virtual packages it provides.

To resolve a request, for example "+A", we:

 1. Build a database of all packages in the world (PkgDB), and number them
 from 1 in (name, version) order. The number of a package is its variable
 in the SAT problem, so the same input always yields the same problem.

 2. Encode the world into CNF hard clauses:
 - A package implies one of the packages satisfying each conjunct of its
   dependencies.
 - A package excludes every package its conflicts match.
 - At most one version of each name is installed.
 - Install, remove and keep directives of the request.
 Requests whose directives contradict each other are rejected before that,
 with a RequestConflict.

 3. Encode the lexicographic criteria (by default: remove as few packages as
 possible, then install as few new ones) into weighted soft clauses, one
 weight tier per criterion, so that the problem becomes a single partial
 weighted MaxSAT problem.

 4. Hand the problem to a sat.Backend, which answers UNSAT, or an
 assignment (optimal if there were criteria).

 5. Separate the packages into sets by comparing their initial and resulting
 state: unchanged packages, packages to install, packages to remove. Then
 sequence the changes into commands: removals first, then installs with
 dependencies first and dependency cycles installed contiguously. The
 command sequence is replayed and checked before being returned.
*/
package solver
