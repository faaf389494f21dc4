// Package graphql exposes completed analysis passes through a GraphQL
// endpoint: pass lookup, node metadata, device cross-references and
// diagnostics.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/ladderflow/ladderflow/pkg/analysis"
	"github.com/ladderflow/ladderflow/pkg/diag"
	"github.com/ladderflow/ladderflow/pkg/diagram"
)

// GenerateSchema builds the query schema over the pass registry
func GenerateSchema(store *analysis.Store) (graphql.Schema, error) {
	nodeType := createNodeType()
	diagnosticType := createDiagnosticType()
	deviceType := createDeviceType()
	passType := createPassType(nodeType, diagnosticType, deviceType)

	queryFields := graphql.Fields{
		"health": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return "ok", nil
			},
		},
		"pass": &graphql.Field{
			Type: passType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{
					Type: graphql.ID,
				},
			},
			Resolve: createPassResolver(store),
		},
		"passes": &graphql.Field{
			Type: graphql.NewList(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return store.IDs(), nil
			},
		},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: queryFields,
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

// createPassResolver resolves a pass by id, defaulting to the latest one
func createPassResolver(store *analysis.Store) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if idStr, ok := p.Args["id"].(string); ok && idStr != "" {
			actx, found := store.Get(idStr)
			if !found {
				return nil, fmt.Errorf("unknown pass %s", idStr)
			}
			return actx, nil
		}
		actx, found := store.Latest()
		if !found {
			return nil, fmt.Errorf("no completed pass available")
		}
		return actx, nil
	}
}

func createPassType(nodeType, diagnosticType, deviceType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Pass",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if actx, ok := p.Source.(*analysis.Context); ok {
						return actx.PassID().String(), nil
					}
					return nil, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if actx, ok := p.Source.(*analysis.Context); ok {
						return actx.CreatedAt(), nil
					}
					return nil, nil
				},
			},
			"networks": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if actx, ok := p.Source.(*analysis.Context); ok {
						return actx.NetworkCount(), nil
					}
					return nil, nil
				},
			},
			"markup": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if actx, ok := p.Source.(*analysis.Context); ok {
						return actx.Diagram().Markup, nil
					}
					return nil, nil
				},
			},
			"nodes": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if actx, ok := p.Source.(*analysis.Context); ok {
						return actx.Diagram().Nodes, nil
					}
					return nil, nil
				},
			},
			"node": &graphql.Field{
				Type: nodeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.ID),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					actx, ok := p.Source.(*analysis.Context)
					if !ok {
						return nil, nil
					}
					id, _ := p.Args["id"].(string)
					for _, meta := range actx.Diagram().Nodes {
						if meta.ID == id {
							return meta, nil
						}
					}
					return nil, fmt.Errorf("unknown node %s", id)
				},
			},
			"device": &graphql.Field{
				Type: deviceType,
				Args: graphql.FieldConfigArgument{
					"address": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					actx, ok := p.Source.(*analysis.Context)
					if !ok {
						return nil, nil
					}
					address, _ := p.Args["address"].(string)
					ids, parsed := actx.DeviceNetworks(address)
					if !parsed {
						return nil, fmt.Errorf("invalid device address %q", address)
					}
					return deviceXref{Address: address, Networks: ids}, nil
				},
			},
			"diagnostics": &graphql.Field{
				Type: graphql.NewList(diagnosticType),
				Args: graphql.FieldConfigArgument{
					"severity": &graphql.ArgumentConfig{
						Type: graphql.String,
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					actx, ok := p.Source.(*analysis.Context)
					if !ok {
						return nil, nil
					}
					switch severity, _ := p.Args["severity"].(string); severity {
					case "":
						return actx.Diagnostics(), nil
					case "warning":
						return actx.DiagnosticsBySeverity(diag.Warning), nil
					case "error":
						return actx.DiagnosticsBySeverity(diag.Error), nil
					default:
						return nil, fmt.Errorf("unknown severity %q", severity)
					}
				},
			},
		},
	})
}

type deviceXref struct {
	Address  string
	Networks []int
}

func createNodeType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Node",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if meta, ok := p.Source.(diagram.NodeMeta); ok {
						return meta.ID, nil
					}
					return nil, nil
				},
			},
			"kind": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if meta, ok := p.Source.(diagram.NodeMeta); ok {
						return meta.Kind, nil
					}
					return nil, nil
				},
			},
			"network": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if meta, ok := p.Source.(diagram.NodeMeta); ok {
						return meta.Network, nil
					}
					return nil, nil
				},
			},
			"label": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if meta, ok := p.Source.(diagram.NodeMeta); ok {
						return meta.Label, nil
					}
					return nil, nil
				},
			},
			"condition": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if meta, ok := p.Source.(diagram.NodeMeta); ok {
						return meta.Condition, nil
					}
					return nil, nil
				},
			},
			"comment": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if meta, ok := p.Source.(diagram.NodeMeta); ok {
						return meta.Comment, nil
					}
					return nil, nil
				},
			},
			"devices": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if meta, ok := p.Source.(diagram.NodeMeta); ok {
						return meta.Devices, nil
					}
					return nil, nil
				},
			},
		},
	})
}

func createDiagnosticType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Diagnostic",
		Fields: graphql.Fields{
			"severity": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if d, ok := p.Source.(diag.Diagnostic); ok {
						return d.Severity.String(), nil
					}
					return nil, nil
				},
			},
			"kind": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if d, ok := p.Source.(diag.Diagnostic); ok {
						return string(d.Kind), nil
					}
					return nil, nil
				},
			},
			"network": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if d, ok := p.Source.(diag.Diagnostic); ok {
						return d.Network, nil
					}
					return nil, nil
				},
			},
			"message": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if d, ok := p.Source.(diag.Diagnostic); ok {
						return d.Message, nil
					}
					return nil, nil
				},
			},
		},
	})
}

func createDeviceType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Device",
		Fields: graphql.Fields{
			"address": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if d, ok := p.Source.(deviceXref); ok {
						return d.Address, nil
					}
					return nil, nil
				},
			},
			"networks": &graphql.Field{
				Type: graphql.NewList(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if d, ok := p.Source.(deviceXref); ok {
						return d.Networks, nil
					}
					return nil, nil
				},
			},
		},
	})
}
