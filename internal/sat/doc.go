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
Package sat is the boundary between the resolver and the decision procedure.

A Backend receives an encoded problem (a dimacs.Formula) and answers Unsat,
Sat with an assignment, or Optimal with an assignment and its cost. It does
no reasoning about packages: it only serializes the problem to the solver's
wire format, runs the solver, and turns the result stream back into an
assignment.

The Process backend runs any solver that speaks the DIMACS / MaxSAT
evaluation formats as a subordinate process, under wall-clock, CPU-time and
memory ceilings, and always tears the process group down before returning.
The Embedded backend runs gophersat in the current process; ServeWorker
wraps it so that depsolver itself can act as the external solver.
*/
package sat
