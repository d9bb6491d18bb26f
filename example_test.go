package bvhgo_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/bvhgo"
	"github.com/hupe1980/bvhgo/geometry"
	"github.com/hupe1980/bvhgo/hierarchy"
)

// Triangle is a minimal shape: three vertices and the node back-reference
// every indexed shape carries.
type Triangle struct {
	A, B, C   geometry.Vec3
	nodeIndex int
}

func NewTriangle(a, b, c geometry.Vec3) *Triangle {
	return &Triangle{A: a, B: b, C: c, nodeIndex: hierarchy.UnsetNodeIndex}
}

func (t *Triangle) AABB() geometry.AABB {
	box := geometry.PointAABB(t.A)
	box.GrowMut(t.B)
	box.GrowMut(t.C)
	return box
}

func (t *Triangle) SetNodeIndex(i int) { t.nodeIndex = i }
func (t *Triangle) NodeIndex() int     { return t.nodeIndex }

func Example() {
	triangles := []*Triangle{
		NewTriangle(geometry.NewVec3(0, 0, 0), geometry.NewVec3(1, 0, 0), geometry.NewVec3(0, 1, 0)),
		NewTriangle(geometry.NewVec3(5, 0, 0), geometry.NewVec3(6, 0, 0), geometry.NewVec3(5, 1, 0)),
		NewTriangle(geometry.NewVec3(0, 5, 0), geometry.NewVec3(1, 5, 0), geometry.NewVec3(0, 6, 0)),
	}

	tree, err := bvhgo.New(triangles)
	if err != nil {
		log.Fatal(err)
	}

	ray := geometry.NewRay(geometry.NewVec3(0.25, 0.25, -1), geometry.NewVec3(0, 0, 1))

	hits, err := tree.Traverse(context.Background(), ray)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(hits))
	// Output: 1
}

func Example_snapshot() {
	triangles := []*Triangle{
		NewTriangle(geometry.NewVec3(0, 0, 0), geometry.NewVec3(1, 0, 0), geometry.NewVec3(0, 1, 0)),
		NewTriangle(geometry.NewVec3(2, 0, 0), geometry.NewVec3(3, 0, 0), geometry.NewVec3(2, 1, 0)),
	}

	tree, err := bvhgo.New(triangles)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	dir, err := os.MkdirTemp("", "bvhgo")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "scene.bvh")

	if err := tree.SaveSnapshot(ctx, path); err != nil {
		log.Fatal(err)
	}

	// Memory map the snapshot; traversal runs directly over the mapping.
	mapped, closer, err := bvhgo.OpenSnapshot(ctx, path, triangles)
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	ray := geometry.NewRay(geometry.NewVec3(-1, 0.25, 0), geometry.NewVec3(1, 0, 0))

	hits, err := mapped.Traverse(ctx, ray)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(hits))
	// Output: 2
}
