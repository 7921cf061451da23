// Package timberlens answers natural-language questions about EU softwood
// timber export statistics.
//
// Pipeline:
//
//	comext.Fetcher → comext.Normalizer → canonical fact table (in memory)
//	→ translator (question → restricted QuerySpec via the reasoning engine)
//	→ engine.Execute (local filter/group/aggregate, no external calls)
//	→ narrator (literal result → prose, no fabricated numbers)
//
// The analyst package ties these together behind three operations (Refresh,
// Ask, Diagnostics), and the server and cmd packages are thin presentation
// adapters over it. The reasoning engine only ever translates and narrates;
// every number comes from the engine package's local execution.
package timberlens
