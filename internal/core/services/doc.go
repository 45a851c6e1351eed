// Package services implements the core question-answering pipeline:
// ingestion (chunk, embed, store, index), context assembly, the grounding
// policy, and the Ask orchestrator. Services depend only on ports; all
// infrastructure is injected.
package services
