package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Shape selects how Execute returns the procedure's rows.
type Shape int

const (
	Single Shape = iota
	Multi
	None
)

func (s Shape) String() string {
	switch s {
	case Single:
		return "Single"
	case Multi:
		return "Multi"
	case None:
		return "None"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Param is one named procedure argument. A nil Value is sent as SQL NULL.
type Param struct {
	Name  string
	Value any
}

func P(name string, value any) Param { return Param{Name: name, Value: value} }

// Call describes one stored-procedure invocation.
type Call struct {
	// Procedure is "schema.name" or "name".
	Procedure string
	Params    []Param
	Shape     Shape
	// Tx runs the call inside an open transaction; nil uses the pool.
	Tx *Tx
	// ResultSets names the result sets of a Multi call.
	ResultSets []string
}

// Result holds the shaped output of Execute.
//   - Single: Row (nil when the procedure returned nothing)
//   - Multi:  Rows (first set, never nil) and Sets when names were given
//   - None:   empty
type Result struct {
	Row  Row
	Rows []Row
	Sets map[string][]Row
}

// statement renders call with PostgreSQL named-argument notation, e.g.
//
//	SELECT * FROM "functional"."spCategoryList"("idAccount" => $1, "idUser" => $2)
func statement(call Call) (string, []any, error) {
	name, err := quoteProcedure(call.Procedure)
	if err != nil {
		return "", nil, err
	}

	args := make([]any, len(call.Params))
	named := make([]string, len(call.Params))
	for i, p := range call.Params {
		if p.Name == "" {
			return "", nil, fmt.Errorf("procedure %s: parameter %d has no name", call.Procedure, i)
		}
		named[i] = fmt.Sprintf("%s => $%d", pq.QuoteIdentifier(p.Name), i+1)
		args[i] = p.Value
	}

	invocation := name + "(" + strings.Join(named, ", ") + ")"
	if call.Shape == None {
		return "SELECT " + invocation, args, nil
	}
	return "SELECT * FROM " + invocation, args, nil
}

func quoteProcedure(procedure string) (string, error) {
	parts := strings.Split(procedure, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid procedure name %q", procedure)
	}
	for i, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "[]")
		if p == "" {
			return "", errors.New("empty procedure name")
		}
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, "."), nil
}
