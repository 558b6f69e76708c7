package systems

import (
	"fmt"

	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/protocol"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
)

/**
 * @brief Uploads mesh geometry to the remote. Each buffer creation is its
 * own dispatch so that the reported id can be tied to it.
 */
type GeometrySystem struct {
	resources *ResourceSystem
	uploaded  []*metadata.Geometry
}

func NewGeometrySystem(rs *ResourceSystem) (*GeometrySystem, error) {
	if rs == nil {
		err := fmt.Errorf("func NewGeometrySystem - resource system is required")
		core.LogError(err.Error())
		return nil, err
	}
	return &GeometrySystem{resources: rs}, nil
}

/**
 * @brief Creates a vertex and an index buffer on the remote and fills them
 * with the mesh data.
 *
 * @return The vertex buffer id and the index buffer id.
 */
func (gs *GeometrySystem) UploadMesh(mesh metadata.MeshData) (uint32, uint32, error) {
	geometry, err := gs.Upload("", mesh)
	if err != nil {
		return 0, 0, err
	}
	return geometry.VertexBufferID, geometry.IndexBufferID, nil
}

// Upload is UploadMesh returning the full geometry descriptor.
func (gs *GeometrySystem) Upload(name string, mesh metadata.MeshData) (*metadata.Geometry, error) {
	if mesh == nil {
		err := fmt.Errorf("upload mesh '%s': %w: no mesh data", name, core.ErrResourceCreationFailed)
		core.LogError(err.Error())
		return nil, err
	}
	vertices := mesh.VertexData()
	indices := mesh.IndexData()
	layout := metadata.LayoutOf(mesh)
	if len(vertices) == 0 || len(indices) < metadata.IndexSize {
		err := fmt.Errorf("upload mesh '%s': %w: empty vertex or index data", name, core.ErrResourceCreationFailed)
		core.LogError(err.Error())
		return nil, err
	}

	vb, err := gs.resources.Create("create vertex buffer", func(cb *protocol.CommandBuffer) {
		cb.Append(protocol.OpCreateBuffer, protocol.TargetArrayBuffer)
	})
	if err != nil {
		return nil, err
	}

	ib, err := gs.resources.Create("fill vertex buffer, create index buffer", func(cb *protocol.CommandBuffer) {
		cb.Append(protocol.OpBindBuffer, protocol.TargetArrayBuffer, vb)
		cb.AppendPayload(protocol.OpBufferData, protocol.TargetArrayBuffer, vertices)
		cb.Append(protocol.OpCreateBuffer, protocol.TargetElementBuffer)
	})
	if err != nil {
		return nil, err
	}

	err = gs.resources.Flush("fill index buffer", func(cb *protocol.CommandBuffer) {
		cb.Append(protocol.OpBindBuffer, protocol.TargetElementBuffer, ib)
		cb.AppendPayload(protocol.OpBufferData, protocol.TargetElementBuffer, indices)
	})
	if err != nil {
		return nil, err
	}

	geometry := &metadata.Geometry{
		VertexBufferID: vb,
		IndexBufferID:  ib,
		IndexCount:     uint32(len(indices) / metadata.IndexSize),
		Layout:         layout,
		Name:           name,
	}
	gs.uploaded = append(gs.uploaded, geometry)
	core.LogDebug("mesh '%s' uploaded: vb=%d ib=%d indices=%d", name, vb, ib, geometry.IndexCount)
	return geometry, nil
}

// Uploaded returns every geometry created so far.
func (gs *GeometrySystem) Uploaded() []*metadata.Geometry {
	return gs.uploaded
}

func (gs *GeometrySystem) Shutdown() error {
	gs.uploaded = nil
	return nil
}
