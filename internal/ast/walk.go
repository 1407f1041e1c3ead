package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Walk recursively traverses an AST and serializes it into a map structure
// suitable for JSON output. Keys are stable so dumps can be diffed.
func Walk(node Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		structs := make([]interface{}, len(n.Structs))
		for i, s := range n.Structs {
			structs[i] = Walk(s)
		}
		functions := make([]interface{}, len(n.Functions))
		for i, f := range n.Functions {
			functions[i] = Walk(f)
		}
		return map[string]interface{}{
			"kind":      n.Kind().String(),
			"structs":   structs,
			"functions": functions,
		}

	case *StructDefinition:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"name":     n.Name,
			"fields":   walkFields(n.Fields),
		}

	case *FunctionDefinition:
		return map[string]interface{}{
			"kind":       n.Kind().String(),
			"position":   n.Pos(),
			"name":       n.Name,
			"parameters": walkFields(n.Parameters),
			"returnType": string(n.ReturnType),
			"body":       Walk(n.Body),
		}

	case *Block:
		statements := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = Walk(s)
		}
		return map[string]interface{}{
			"kind":       n.Kind().String(),
			"position":   n.Pos(),
			"statements": statements,
		}

	case *VarStatement:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"name":     n.Name,
			"type":     string(n.Type),
		}

	case *AssignStatement:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"target":   Walk(n.Target),
			"value":    Walk(n.Value),
		}

	case *CallStatement:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"call":     Walk(n.Call),
		}

	case *IfStatement:
		return map[string]interface{}{
			"kind":        n.Kind().String(),
			"position":    n.Pos(),
			"condition":   Walk(n.Condition),
			"consequence": Walk(n.Consequence),
			"alternative": Walk(n.Alternative),
		}

	case *ForStatement:
		return map[string]interface{}{
			"kind":      n.Kind().String(),
			"position":  n.Pos(),
			"init":      Walk(n.Init),
			"condition": Walk(n.Condition),
			"update":    Walk(n.Update),
			"body":      Walk(n.Body),
		}

	case *ReturnStatement:
		return map[string]interface{}{
			"kind":        n.Kind().String(),
			"position":    n.Pos(),
			"returnValue": Walk(n.ReturnValue),
		}

	case *RaiseStatement:
		return map[string]interface{}{
			"kind":      n.Kind().String(),
			"position":  n.Pos(),
			"exception": Walk(n.Exception),
		}

	case *TryStatement:
		catchers := make([]interface{}, len(n.Catchers))
		for i, c := range n.Catchers {
			catchers[i] = Walk(c)
		}
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"body":     Walk(n.Body),
			"catchers": catchers,
		}

	case *CatchClause:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"tag":      n.Tag,
			"body":     Walk(n.Body),
		}

	case *CallExpression:
		args := make([]interface{}, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = Walk(a)
		}
		return map[string]interface{}{
			"kind":      n.Kind().String(),
			"position":  n.Pos(),
			"name":      n.Name,
			"arguments": args,
		}

	case *NewExpression:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"typeName": n.TypeName,
		}

	case *Variable:
		path := make([]interface{}, len(n.Path))
		for i, p := range n.Path {
			path[i] = p
		}
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"path":     path,
		}

	case *IntegerLiteral:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"value":    n.Value,
		}

	case *StringLiteral:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"value":    n.Value,
		}

	case *Boolean:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"value":    n.Value,
		}

	case *Nil:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
		}

	case *PrefixExpression:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"operator": n.Operator,
			"right":    Walk(n.Right),
		}

	case *InfixExpression:
		return map[string]interface{}{
			"kind":     n.Kind().String(),
			"position": n.Pos(),
			"left":     Walk(n.Left),
			"operator": n.Operator,
			"right":    Walk(n.Right),
		}

	default:
		return map[string]interface{}{
			"kind":  "unknown",
			"value": fmt.Sprintf("%T", node),
		}
	}
}

func walkFields(fields []*Field) []interface{} {
	result := make([]interface{}, len(fields))
	for i, f := range fields {
		result[i] = map[string]interface{}{
			"name": f.Name,
			"type": string(f.Type),
		}
	}
	return result
}

func RenderJSON(node Node) (string, error) {
	tree := Walk(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(tree); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}
