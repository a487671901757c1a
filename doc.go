// Package jsonio persists Go structs into shared JSON documents.
//
// A document is a JSON object whose top-level keys are root keys. Each entity
// type owns the section under its RootKey:
//
//	{
//	    "Config": {
//	        "name": "x",
//	        "count": 5
//	    },
//	    "Other": {
//	        "flag": false
//	    }
//	}
//
// Saving an entity replaces only its own section. Loading updates the live
// entity in place: fields missing from the document keep their value, fields
// whose stored value does not match the field's current type are skipped and
// reported to the DiagnosticSink.
//
// Sections can also be queried with expr, CEL or (with the js_eval build tag)
// JavaScript expressions through Store.Evaluate. SectionSchema describes the
// section an entity type writes as an OpenAPI 3 schema object.
package jsonio
