// Package depgraph is a directed dependency graph over string identifiers.
//
// An edge source -> target reads "source depends on target". The graph keeps
// a forward adjacency (what a node depends on) and a reverse adjacency (what
// depends on a node) that mirror each other at all times: for every edge
// (u, v), v is in forward[u] and u is in reverse[v].
//
// Nodes, and the neighbours of each node, are iterated in insertion order so
// that every analysis returns deterministic results.
//
// On top of the structure the package offers the usual analyses:
//   - cycle enumeration (FindCycles) and topological ordering (TopologicalSort)
//   - path enumeration (FindAllPaths) and change impact (ImpactedModules)
//   - fan-in/fan-out and cyclomatic complexity (CalculateMetrics)
//   - per-layer cohesion (CalculateLayerCohesion) and hotspots (IdentifyHotspots)
//   - Graphviz rendering (ToDot)
//
// A Graph is not safe for concurrent use.
package depgraph
