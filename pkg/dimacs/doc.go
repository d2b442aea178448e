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
Package dimacs reads and writes the problems and answers exchanged with a
SAT or MaxSAT solver.

Problems use the DIMACS CNF format ("p cnf") when there is nothing to
optimize, and the classic partial weighted MaxSAT format ("p wcnf") when
there are soft clauses. Answers use the result stream of the SAT and MaxSAT
evaluations:

	c a comment
	o 3
	s OPTIMUM FOUND
	v 1 -2 3 0

The "v" line may also carry a single string of 0 and 1 characters, one per
variable. Variables the answer does not mention are false.
*/
package dimacs
