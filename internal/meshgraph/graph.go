// Package meshgraph reads Meshroom save files (.mg) to find where a node
// wrote its outputs inside the cache directory.
package meshgraph

import (
	"path/filepath"

	"multiscan/internal/fileutil"
)

const (
	structureFromMotionNode = "StructureFromMotion_1"
	depthMapNode            = "DepthMap_1"
)

type node struct {
	UIDs map[string]string `json:"uids"`
}

// Graph is the subset of a saved reconstruction graph the pipeline needs.
type Graph struct {
	Nodes map[string]node `json:"graph"`
}

// Load parses the graph at path. A missing file reports ok=false without
// error; malformed JSON is returned as an error.
func Load(path string) (*Graph, bool, error) {
	var g Graph
	ok, err := fileutil.ReadJSON(path, &g)
	if err != nil || !ok {
		return nil, false, err
	}
	return &g, true, nil
}

// UID returns the first content identifier recorded for the named node.
func (g *Graph) UID(nodeName string) (string, bool) {
	if g == nil || g.Nodes == nil {
		return "", false
	}
	n, ok := g.Nodes[nodeName]
	if !ok {
		return "", false
	}
	uid, ok := n.UIDs["0"]
	if !ok || uid == "" {
		return "", false
	}
	return uid, true
}

// CameraSfmPath is the cache-relative camera file written by structure from
// motion: StructureFromMotion/<uid>/cameras.sfm.
func (g *Graph) CameraSfmPath() (string, bool) {
	uid, ok := g.UID(structureFromMotionNode)
	if !ok {
		return "", false
	}
	return filepath.Join("StructureFromMotion", uid, "cameras.sfm"), true
}

// DepthMapDir is the cache-relative depth map directory: DepthMap/<uid>.
func (g *Graph) DepthMapDir() (string, bool) {
	uid, ok := g.UID(depthMapNode)
	if !ok {
		return "", false
	}
	return filepath.Join("DepthMap", uid), true
}

// CameraSfmPathFromFile loads path and returns CameraSfmPath.
func CameraSfmPathFromFile(path string) (string, bool, error) {
	g, ok, err := Load(path)
	if err != nil || !ok {
		return "", false, err
	}
	rel, ok := g.CameraSfmPath()
	return rel, ok, nil
}

// DepthMapDirFromFile loads path and returns DepthMapDir.
func DepthMapDirFromFile(path string) (string, bool, error) {
	g, ok, err := Load(path)
	if err != nil || !ok {
		return "", false, err
	}
	rel, ok := g.DepthMapDir()
	return rel, ok, nil
}
