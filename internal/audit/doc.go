// Package audit persists the gateway's own security decisions.
//
// The gateway defers almost every decision to the upstream Admin API;
// the few it originates locally (ownership-guard denials, superadmin
// credential grants and denials) are exactly the ones worth an audit
// trail. Entries are append-only and best-effort: a failed append is
// logged and never blocks or alters a request.
//
// The trail influences no request-handling decision. The pipeline
// itself stays stateless across requests.
package audit
