// Package schema describes the expected shape of event payloads.
//
// A Schema is a capability with a single question, Validate(value) bool.
// Emitters validate outgoing data and listeners validate incoming data
// against the schema declared when they were registered; the dispatch
// engine itself never inspects payloads.
//
// Built-in schemas:
//
//	schema.Any()                         // no constraint
//	schema.Nil()                         // only nil
//	schema.TypeOf[Order]()               // exact Go type (or interface implementation)
//	schema.OneOf(schema.TypeOf[int](), schema.TypeOf[string]())
//	schema.Literal("buy", "sell")
//	schema.SliceOf(schema.TypeOf[int]())
//	schema.MapOf(schema.TypeOf[string](), schema.Any())
//	schema.Struct[Order]()               // type + go-playground/validator tags
//	schema.JSON("id", "items.#")         // raw JSON with required paths
//	schema.Func("positive", func(v any) bool { ... })
//
// Failures are reported as *ValidationError. The offending value is
// rendered with Truncate so log lines stay bounded.
package schema
