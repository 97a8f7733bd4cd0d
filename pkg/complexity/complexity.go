// Copyright 2025 KrakLabs
//
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
//
// SPDX-License-Identifier: Apache-2.0

package complexity

import (
	"strings"

	"github.com/kraklabs/codeintel/pkg/astprovider"
	"github.com/kraklabs/codeintel/pkg/langprofile"
)

// Result is the output of analysing one function body (§4.B).
type Result struct {
	Cyclomatic    int
	Cognitive     int
	ReadsGlobals  []string
	WritesGlobals []string
	Generator     bool
	Async         bool
}

// Input bundles everything Analyze needs about the enclosing function.
type Input struct {
	Body           astprovider.Node // the function's block, or nil for an empty body
	Params         []string         // parameter names, receiver already excluded
	ReceiverName   string           // "" for free functions
	OwnName        string           // for direct-recursion detection
	Profile        langprofile.Profile
	PackageGlobals map[string]bool // names of package-level var/const bindings
}

type analyzer struct {
	profile langprofile.Profile
	scope   *scopeTracker

	cyclomatic int
	cognitive  int

	reads      []string
	readsSeen  map[string]bool
	writes     []string
	writesSeen map[string]bool

	recursionCounted bool
	ownName          string
	receiverName     string

	sawGoroutineWithSend bool
	sawChannelMake       bool
}

// Analyze computes cyclomatic/cognitive complexity and scope-tracked
// global access for one function body (§4.B). A nil Body (e.g. an
// interface method with no implementation) yields the baseline result:
// cyclomatic=1, cognitive=0, no global access.
func Analyze(in Input) Result {
	a := &analyzer{
		profile:      in.Profile,
		scope:        newScopeTracker(in.PackageGlobals),
		cyclomatic:   1,
		readsSeen:    map[string]bool{},
		writesSeen:   map[string]bool{},
		ownName:      in.OwnName,
		receiverName: in.ReceiverName,
	}

	for _, p := range in.Params {
		a.scope.defineLocal(p)
	}
	if in.ReceiverName != "" {
		a.scope.defineLocal(in.ReceiverName)
	}

	if in.Body != nil {
		a.visitBlock(in.Body, 0)
	}

	if a.sawGoroutineWithSend && a.sawChannelMake {
		// Approximation documented in SPEC_FULL.md §4.B: async is inferred
		// only when a spawned goroutine communicates over a channel that
		// the enclosing function itself allocates, a conservative proxy
		// for "this function's result crosses a goroutine boundary".
	}

	return Result{
		Cyclomatic:    a.cyclomatic,
		Cognitive:     a.cognitive,
		ReadsGlobals:  a.reads,
		WritesGlobals: a.writes,
		Generator:     false, // Go has no yield; always false per language binding
		Async:         a.sawGoroutineWithSend && a.sawChannelMake,
	}
}

func (a *analyzer) recordRead(name string) {
	if a.readsSeen[name] {
		return
	}
	a.readsSeen[name] = true
	a.reads = append(a.reads, name)
}

func (a *analyzer) recordWrite(name string) {
	if a.writesSeen[name] {
		return
	}
	a.writesSeen[name] = true
	a.writes = append(a.writes, name)
}

// visitBlock walks each statement of a block at the given nesting depth.
func (a *analyzer) visitBlock(n astprovider.Node, depth int) {
	for _, c := range n.Children() {
		a.visit(c, depth)
	}
}

// visit dispatches on node kind, applying the §4.B rules. depth is the
// current cognitive-complexity nesting depth.
func (a *analyzer) visit(n astprovider.Node, depth int) {
	if n == nil {
		return
	}

	switch n.Kind() {
	case astprovider.KindFunctionDecl, astprovider.KindMethodDecl, astprovider.KindFuncLiteral:
		// Nested function definitions form their own analysis unit (§4.B
		// rule 2); they are never descended into from here. The parser
		// discovers and analyzes them separately as their own FunctionEntity.
		return

	case astprovider.KindIf:
		a.visitIf(n, depth)

	case astprovider.KindFor:
		a.visitFor(n, depth)

	case astprovider.KindSwitchStmt:
		// expression_switch_statement / type_switch_statement: the switch
		// keyword itself contributes nothing (SPEC_FULL.md §4.B Go binding);
		// only its case arms count. Its own case clauses are children here.
		a.scope.push()
		for _, c := range n.Children() {
			a.visit(c, depth)
		}
		a.scope.pop()

	case astprovider.KindSwitchCase:
		// expression_case / type_case / default_case / communication_case:
		// each arm is an if-like branch at the switch's own depth.
		a.cyclomatic++
		a.cognitive += 1 + depth
		a.scope.push()
		for _, c := range n.Children() {
			a.visit(c, depth+1)
		}
		a.scope.pop()

	case astprovider.KindSelect:
		a.scope.push()
		for _, c := range n.Children() {
			a.visit(c, depth)
		}
		a.scope.pop()

	case astprovider.KindBlock:
		a.scope.push()
		a.visitBlock(n, depth)
		a.scope.pop()

	case astprovider.KindBooleanOp:
		a.visitBinary(n, depth)

	case astprovider.KindShortVarDecl:
		a.visitShortVarDecl(n, depth)

	case astprovider.KindAssignment:
		a.visitAssignment(n, depth)

	case astprovider.KindVarDecl, astprovider.KindConstDecl:
		a.visitVarOrConstDecl(n, depth)

	case astprovider.KindCall:
		a.visitCall(n, depth)

	case astprovider.KindAttribute:
		a.visitAttribute(n, depth, false)

	case astprovider.KindTypeAssertion:
		// the comma-ok form (`v, ok := x.(T)`) is handled as an assertion
		// by visitShortVarDecl; a bare type assertion used as a plain
		// expression still recurses into its operand.
		if operand := n.ChildByFieldName("operand"); operand != nil {
			a.visit(operand, depth)
		}

	case astprovider.KindBreak, astprovider.KindContinue:
		a.cognitive++

	case astprovider.KindGoStatement:
		a.visitGoStatement(n, depth)

	case astprovider.KindIdentifier:
		a.visitIdentifierRead(n)

	default:
		for _, c := range n.Children() {
			a.visit(c, depth)
		}
	}
}

func (a *analyzer) visitIf(n astprovider.Node, depth int) {
	a.cyclomatic++
	a.cognitive += 1 + depth

	if cond := n.ChildByFieldName("condition"); cond != nil {
		a.visit(cond, depth)
	}
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		a.visit(cons, depth+1)
	}

	alt := n.ChildByFieldName("alternative")
	if alt == nil {
		return
	}
	if alt.Kind() == astprovider.KindIf {
		// else-if: a sibling branch of the same conditional chain, at the
		// same nesting depth (common cognitive-complexity convention).
		a.visitIf(alt, depth)
		return
	}
	// plain else
	a.cognitive += 1 + depth
	a.visit(alt, depth+1)
}

func (a *analyzer) visitFor(n astprovider.Node, depth int) {
	a.cyclomatic++
	a.cognitive += 1 + depth

	a.scope.push()
	for _, c := range n.Children() {
		if c.RawType() == "range_clause" {
			a.bindRangeClause(c)
			continue
		}
	}
	for _, c := range n.Children() {
		if c.RawType() == "range_clause" {
			continue
		}
		if c.Kind() == astprovider.KindBlock {
			a.visit(c, depth+1)
			continue
		}
		a.visit(c, depth)
	}
	a.scope.pop()
}

func (a *analyzer) bindRangeClause(rangeClause astprovider.Node) {
	left := rangeClause.ChildByFieldName("left")
	if left == nil {
		return
	}
	for _, name := range splitIdentifierList(left.Content()) {
		a.scope.defineLocal(name)
	}
}

func (a *analyzer) visitBinary(n astprovider.Node, depth int) {
	op := ""
	if opNode := n.ChildByFieldName("operator"); opNode != nil {
		op = opNode.Content()
	}
	if op == "&&" || op == "||" {
		if !a.profile.LegacyCyclomatic {
			a.cyclomatic++
		}
		a.cognitive++ // flat: no depth weighting for boolean combinators
	}
	if left := n.ChildByFieldName("left"); left != nil {
		a.visit(left, depth)
	}
	if right := n.ChildByFieldName("right"); right != nil {
		a.visit(right, depth)
	}
}

func (a *analyzer) visitShortVarDecl(n astprovider.Node, depth int) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if right != nil {
		a.visit(right, depth)
		// The two-value type-assertion form (v, ok := x.(T)) is the Go
		// binding's "assertion" cyclomatic contribution; map and channel
		// comma-ok reads are not counted. `right` is an expression_list
		// even for a single value, so isCommaOkForm looks inside it.
		if left != nil && len(splitIdentifierList(left.Content())) == 2 && isCommaOkForm(right) {
			a.cyclomatic++
		}
	}
	if left != nil {
		for _, name := range splitIdentifierList(left.Content()) {
			a.scope.defineLocal(name)
		}
	}
}

func (a *analyzer) visitAssignment(n astprovider.Node, depth int) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	op := ""
	if opNode := n.ChildByFieldName("operator"); opNode != nil {
		op = opNode.Content()
	}
	augmented := op != "" && op != "="

	if right != nil {
		a.visit(right, depth)
	}
	if left == nil {
		return
	}
	for _, target := range left.Children() {
		a.visitAssignmentTarget(target, augmented)
	}
	// left may itself be a bare identifier rather than an expression_list
	if len(left.Children()) == 0 {
		a.visitAssignmentTarget(left, augmented)
	}
}

func (a *analyzer) visitAssignmentTarget(target astprovider.Node, augmented bool) {
	switch target.Kind() {
	case astprovider.KindIdentifier:
		a.handleWriteTarget(target.Content(), augmented)
	case astprovider.KindAttribute:
		a.visitAttribute(target, 0, augmented)
	default:
		// indexed/complex targets: best effort, look for an identifier base
		if base := target.ChildByFieldName("operand"); base != nil && base.Kind() == astprovider.KindIdentifier {
			a.handleWriteTarget(base.Content(), augmented)
		}
	}
}

func (a *analyzer) handleWriteTarget(name string, augmented bool) {
	switch a.scope.classify(name) {
	case accessLocal:
		return
	case accessGlobal:
		if augmented {
			a.recordRead(name)
		}
		a.recordWrite(name)
	default:
		// Unrecognised bare identifier on the LHS of "=" cannot be a new
		// binding in Go (only ":=" introduces names); treat as local to
		// avoid false-positive global writes for names the scope tracker
		// simply has not seen declared (e.g. named return values).
		a.scope.defineLocal(name)
	}
}

func (a *analyzer) visitAttribute(n astprovider.Node, depth int, write bool) {
	// "Attribute access recurses into the base object only" (§4.B rule 7).
	base := n.ChildByFieldName("operand")
	if base == nil {
		return
	}
	if base.Kind() == astprovider.KindIdentifier {
		name := base.Content()
		switch a.scope.classify(name) {
		case accessGlobal:
			if write {
				a.recordWrite(name)
			} else {
				a.recordRead(name)
			}
		}
		return
	}
	a.visit(base, depth)
}

func (a *analyzer) visitVarOrConstDecl(n astprovider.Node, depth int) {
	for _, spec := range n.Children() {
		nameField := spec.ChildByFieldName("name")
		if nameField != nil {
			for _, name := range splitIdentifierList(nameField.Content()) {
				a.scope.defineLocal(name)
			}
		}
		if value := spec.ChildByFieldName("value"); value != nil {
			a.visit(value, depth)
		}
		for _, c := range spec.Children() {
			if c.Kind() != astprovider.KindIdentifier {
				a.visit(c, depth)
			}
		}
	}
}

func (a *analyzer) visitCall(n astprovider.Node, depth int) {
	fn := n.ChildByFieldName("function")
	callee := calleeText(fn)

	if callee == a.ownName || (a.receiverName != "" && callee == a.receiverName+"."+a.ownName) {
		if !a.recursionCounted {
			a.cognitive++
			a.recursionCounted = true
		}
	}

	if a.profile.IsAssertionCall(callee) {
		a.cyclomatic++
	}

	if callee == "make" {
		if args := n.ChildByFieldName("arguments"); args != nil && strings.Contains(args.Content(), "chan") {
			a.sawChannelMake = true
		}
	}

	if fn != nil {
		a.visit(fn, depth)
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		a.visit(args, depth)
	}
}

func (a *analyzer) visitGoStatement(n astprovider.Node, depth int) {
	for _, c := range n.Children() {
		if containsSend(c) {
			a.sawGoroutineWithSend = true
		}
		a.visit(c, depth)
	}
}

func containsSend(n astprovider.Node) bool {
	if n == nil {
		return false
	}
	if n.RawType() == "send_statement" {
		return true
	}
	for _, c := range n.Children() {
		if containsSend(c) {
			return true
		}
	}
	return false
}

func (a *analyzer) visitIdentifierRead(n astprovider.Node) {
	name := n.Content()
	if a.profile.IsBuiltin(name) {
		return
	}
	switch a.scope.classify(name) {
	case accessGlobal:
		a.recordRead(name)
	}
}

func calleeText(fn astprovider.Node) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case astprovider.KindIdentifier:
		return fn.Content()
	case astprovider.KindAttribute:
		base := fn.ChildByFieldName("operand")
		field := fn.ChildByFieldName("field")
		if base != nil && field != nil {
			return base.Content() + "." + field.Content()
		}
	}
	return strings.TrimSpace(fn.Content())
}

// isCommaOkForm reports whether a short-var-decl's right-hand side is a
// type assertion (`x.(T)`), directly or as an element of its expression
// list; the caller checks that the left-hand side binds two names. Map and
// channel comma-ok reads are not recognised: at this syntactic level they
// look like any other index or receive expression, so only the assertion
// case — the only one the Go binding counts as an "assertion" (§4.B) —
// qualifies.
func isCommaOkForm(right astprovider.Node) bool {
	if right == nil {
		return false
	}
	if right.Kind() == astprovider.KindTypeAssertion {
		return true
	}
	for _, c := range right.Children() {
		if c.Kind() == astprovider.KindTypeAssertion {
			return true
		}
	}
	return false
}

func splitIdentifierList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
