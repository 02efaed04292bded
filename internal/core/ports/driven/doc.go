// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - VectorStore: chunk persistence and similarity search (SQLite, memory)
//   - EmbeddingService: text to vector (Ollama, OpenAI)
//   - Loader / LoaderRegistry: reads plain text, PDF and web sources
//   - LinkDiscoverer: extracts links from one web page
//   - URLListStore: registered URL list persistence
//   - PostProcessor / PostProcessorPipeline: text to chunks
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, loader, or postprocessor package
package driven
