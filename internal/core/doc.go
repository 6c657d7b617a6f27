// Package core provides the bulk import pipeline for company and contact records.
//
// The package holds all domain logic independent of any CLI, transport, or
// storage engine. Persistence is reached only through [RecordStore], so the
// same pipeline runs against the in-memory, SQLite, and PostgreSQL stores.
//
// # Pipeline
//
// One call to [Service.Submit] is one run. The stages are:
//
//  1. [ReadRows] decodes the file and splits it into trimmed rows
//  2. [InferMapping] matches header cells to target fields, then the
//     caller's explicit mapping is applied on top
//  3. [RowValidator] checks required fields and parses typed values,
//     collecting every error on a row
//  4. [Resolver] finds or creates the parent company named by a contact row
//  5. [Tag] stamps a visibility tier set on each draft
//  6. [Committer] writes surviving drafts through the store's batch calls
//  7. the report builder counts outcomes into an [ImportReport]
//
// Row-level problems never abort a run. Only a file that cannot be read
// produces an error from Submit.
//
// # Entity Registry
//
// Entity kinds are registered at init time using [Register]. Each
// [EntityDefinition] lists its fields and knows how to build a draft:
//
//	core.Register(EntityDefinition{
//	    Kind:   KindCompany,
//	    Fields: []FieldSpec{{Name: "company_name", Required: true}},
//	    Build:  buildCompany,
//	})
//
// # Embedding
//
// The CLI is one caller; an HTTP service is another. Mounted behind chi's
// RequestID middleware, every log line a run writes through
// logging.FromContext carries both request_id and run_id:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Post("/imports/{kind}", func(w http.ResponseWriter, r *http.Request) {
//	    report, err := svc.Submit(r.Context(), core.SubmitRequest{
//	        Content: body,
//	        Kind:    core.EntityKind(chi.URLParam(r, "kind")),
//	    })
//	    ...
//	})
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - PARSE001-PARSE004: File errors (empty, size, encoding, header)
//   - VAL001-VAL003: Validation and request errors
//   - RES001: Parent resolution errors
//   - STO001-STO006: Store errors (duplicates, constraints, connections)
//   - RUN001-RUN003: Run errors (capacity, cancellation, timeout)
package core
