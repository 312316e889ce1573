package scene

import (
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/constraints"
	"github.com/mutagen-io/meshsync/pkg/wire"
)

// Field numbers for encoded entities.
const (
	fieldEntityType      = 1
	fieldEntityPath      = 2
	fieldEntityID        = 3
	fieldEntityIndex     = 4
	fieldEntityPosition  = 5
	fieldEntityRotation  = 6
	fieldEntityScale     = 7
	fieldEntityHidden    = 8
	fieldEntityReference = 9
	fieldEntityCamera    = 10
	fieldEntityLight     = 11
	fieldEntityMesh      = 12
)

// Field numbers for encoded cameras.
const (
	fieldCameraOrthographic = 1
	fieldCameraFieldOfView  = 2
	fieldCameraNearPlane    = 3
	fieldCameraFarPlane     = 4
	fieldCameraAspect       = 5
)

// Field numbers for encoded lights.
const (
	fieldLightType      = 1
	fieldLightColor     = 2
	fieldLightIntensity = 3
	fieldLightRange     = 4
	fieldLightSpotAngle = 5
	fieldLightShadows   = 6
)

// Field numbers for encoded meshes.
const (
	fieldMeshPoints      = 1
	fieldMeshNormals     = 2
	fieldMeshTangents    = 3
	fieldMeshUV0         = 4
	fieldMeshUV1         = 5
	fieldMeshColors      = 6
	fieldMeshCounts      = 7
	fieldMeshIndices     = 8
	fieldMeshMaterialIDs = 9
	fieldMeshFlags       = 10
)

// Field numbers for encoded materials.
const (
	fieldMaterialID         = 1
	fieldMaterialName       = 2
	fieldMaterialColor      = 3
	fieldMaterialEmission   = 4
	fieldMaterialMetallic   = 5
	fieldMaterialSmoothness = 6
)

// Field numbers for encoded settings.
const (
	fieldSettingsName        = 1
	fieldSettingsHandedness  = 2
	fieldSettingsScaleFactor = 3
)

// Field numbers for encoded scenes.
const (
	fieldSceneSettings   = 1
	fieldSceneEntity     = 2
	fieldSceneMaterial   = 3
	fieldSceneConstraint = 4
)

// Encode appends the entity's fields to an encoder.
func (e *Entity) Encode(encoder *wire.Encoder) {
	encoder.Uint(fieldEntityType, uint64(e.Type))
	encoder.Text(fieldEntityPath, e.Path)
	encoder.Int(fieldEntityID, int64(e.ID))
	encoder.Int(fieldEntityIndex, int64(e.Index))
	encoder.Float3(fieldEntityPosition, e.Position)
	encoder.Quaternion(fieldEntityRotation, e.Rotation)
	encoder.Float3(fieldEntityScale, e.Scale)
	encoder.Bool(fieldEntityHidden, !e.Visible)
	encoder.Text(fieldEntityReference, e.Reference)
	if c := e.Camera; c != nil {
		encoder.Message(fieldEntityCamera, func(nested *wire.Encoder) {
			nested.Bool(fieldCameraOrthographic, c.Orthographic)
			nested.Float(fieldCameraFieldOfView, c.FieldOfView)
			nested.Float(fieldCameraNearPlane, c.NearPlane)
			nested.Float(fieldCameraFarPlane, c.FarPlane)
			nested.Float(fieldCameraAspect, c.Aspect)
		})
	}
	if l := e.Light; l != nil {
		encoder.Message(fieldEntityLight, func(nested *wire.Encoder) {
			nested.Uint(fieldLightType, uint64(l.Type))
			nested.Float4(fieldLightColor, l.Color)
			nested.Float(fieldLightIntensity, l.Intensity)
			nested.Float(fieldLightRange, l.Range)
			nested.Float(fieldLightSpotAngle, l.SpotAngle)
			nested.Bool(fieldLightShadows, l.Shadows)
		})
	}
	if m := e.Mesh; m != nil {
		encoder.Message(fieldEntityMesh, func(nested *wire.Encoder) {
			nested.Float3s(fieldMeshPoints, m.Points)
			nested.Float3s(fieldMeshNormals, m.Normals)
			nested.Float4s(fieldMeshTangents, m.Tangents)
			nested.Float2s(fieldMeshUV0, m.UV0)
			nested.Float2s(fieldMeshUV1, m.UV1)
			nested.Float4s(fieldMeshColors, m.Colors)
			nested.Int32s(fieldMeshCounts, m.Counts)
			nested.Int32s(fieldMeshIndices, m.Indices)
			nested.Int32s(fieldMeshMaterialIDs, m.MaterialIDs)
			nested.Uint(fieldMeshFlags, uint64(m.Flags))
		})
	}
}

// Marshal encodes the entity.
func (e *Entity) Marshal() []byte {
	encoder := &wire.Encoder{}
	e.Encode(encoder)
	return encoder.Bytes()
}

// UnmarshalEntity decodes an entity. The result is not validated.
func UnmarshalEntity(data []byte) (*Entity, error) {
	result := &Entity{Transform: Transform{Visible: true}}
	err := wire.Decode(data, func(f *wire.Field) error {
		switch f.Number {
		case fieldEntityType:
			result.Type = EntityType(f.Uint())
		case fieldEntityPath:
			result.Path = f.Text()
		case fieldEntityID:
			result.ID = int32(f.Int())
		case fieldEntityIndex:
			result.Index = int32(f.Int())
		case fieldEntityPosition:
			result.Position = f.Float3()
		case fieldEntityRotation:
			result.Rotation = f.Quaternion()
		case fieldEntityScale:
			result.Scale = f.Float3()
		case fieldEntityHidden:
			result.Visible = !f.Bool()
		case fieldEntityReference:
			result.Reference = f.Text()
		case fieldEntityCamera:
			result.Camera = &Camera{}
			return wire.Decode(f.Data(), result.Camera.decodeField)
		case fieldEntityLight:
			result.Light = &Light{}
			return wire.Decode(f.Data(), result.Light.decodeField)
		case fieldEntityMesh:
			result.Mesh = &Mesh{}
			return wire.Decode(f.Data(), result.Mesh.decodeField)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// decodeField decodes a single camera field.
func (c *Camera) decodeField(f *wire.Field) error {
	switch f.Number {
	case fieldCameraOrthographic:
		c.Orthographic = f.Bool()
	case fieldCameraFieldOfView:
		c.FieldOfView = f.Float()
	case fieldCameraNearPlane:
		c.NearPlane = f.Float()
	case fieldCameraFarPlane:
		c.FarPlane = f.Float()
	case fieldCameraAspect:
		c.Aspect = f.Float()
	}
	return nil
}

// decodeField decodes a single light field.
func (l *Light) decodeField(f *wire.Field) error {
	switch f.Number {
	case fieldLightType:
		l.Type = LightType(f.Uint())
	case fieldLightColor:
		l.Color = f.Float4()
	case fieldLightIntensity:
		l.Intensity = f.Float()
	case fieldLightRange:
		l.Range = f.Float()
	case fieldLightSpotAngle:
		l.SpotAngle = f.Float()
	case fieldLightShadows:
		l.Shadows = f.Bool()
	}
	return nil
}

// decodeField decodes a single mesh field.
func (m *Mesh) decodeField(f *wire.Field) error {
	switch f.Number {
	case fieldMeshPoints:
		m.Points = f.Float3s()
	case fieldMeshNormals:
		m.Normals = f.Float3s()
	case fieldMeshTangents:
		m.Tangents = f.Float4s()
	case fieldMeshUV0:
		m.UV0 = f.Float2s()
	case fieldMeshUV1:
		m.UV1 = f.Float2s()
	case fieldMeshColors:
		m.Colors = f.Float4s()
	case fieldMeshCounts:
		m.Counts = f.Int32s()
	case fieldMeshIndices:
		m.Indices = f.Int32s()
	case fieldMeshMaterialIDs:
		m.MaterialIDs = f.Int32s()
	case fieldMeshFlags:
		m.Flags = MeshFlags(f.Uint())
	}
	return nil
}

// Encode appends the material's fields to an encoder.
func (m *Material) Encode(encoder *wire.Encoder) {
	encoder.Int(fieldMaterialID, int64(m.ID))
	encoder.Text(fieldMaterialName, m.Name)
	encoder.Float4(fieldMaterialColor, m.Color)
	encoder.Float4(fieldMaterialEmission, m.Emission)
	encoder.Float(fieldMaterialMetallic, m.Metallic)
	encoder.Float(fieldMaterialSmoothness, m.Smoothness)
}

// Marshal encodes the material.
func (m *Material) Marshal() []byte {
	encoder := &wire.Encoder{}
	m.Encode(encoder)
	return encoder.Bytes()
}

// UnmarshalMaterial decodes a material.
func UnmarshalMaterial(data []byte) (*Material, error) {
	result := &Material{}
	err := wire.Decode(data, func(f *wire.Field) error {
		switch f.Number {
		case fieldMaterialID:
			result.ID = int32(f.Int())
		case fieldMaterialName:
			result.Name = f.Text()
		case fieldMaterialColor:
			result.Color = f.Float4()
		case fieldMaterialEmission:
			result.Emission = f.Float4()
		case fieldMaterialMetallic:
			result.Metallic = f.Float()
		case fieldMaterialSmoothness:
			result.Smoothness = f.Float()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Encode appends the settings' fields to an encoder.
func (s Settings) Encode(encoder *wire.Encoder) {
	encoder.Text(fieldSettingsName, s.Name)
	encoder.Uint(fieldSettingsHandedness, uint64(s.Handedness))
	encoder.Float(fieldSettingsScaleFactor, s.ScaleFactor)
}

// UnmarshalSettings decodes scene settings.
func UnmarshalSettings(data []byte) (Settings, error) {
	var result Settings
	err := wire.Decode(data, func(f *wire.Field) error {
		switch f.Number {
		case fieldSettingsName:
			result.Name = f.Text()
		case fieldSettingsHandedness:
			result.Handedness = Handedness(f.Uint())
		case fieldSettingsScaleFactor:
			result.ScaleFactor = f.Float()
		}
		return nil
	})
	return result, err
}

// Encode appends the scene's fields to an encoder. Entities, materials, and
// constraints are written in sorted order so that encodings are
// deterministic.
func (s *Scene) Encode(encoder *wire.Encoder) {
	encoder.Message(fieldSceneSettings, s.Settings.Encode)
	for _, path := range s.Paths() {
		encoder.Message(fieldSceneEntity, s.Entities[path].Encode)
	}
	for _, id := range s.MaterialIDs() {
		encoder.Message(fieldSceneMaterial, s.Materials[id].Encode)
	}
	for _, path := range s.ConstraintPaths() {
		encoder.Message(fieldSceneConstraint, s.Constraints[path].Encode)
	}
}

// Marshal encodes the scene.
func (s *Scene) Marshal() []byte {
	encoder := &wire.Encoder{}
	s.Encode(encoder)
	return encoder.Bytes()
}

// Unmarshal decodes a scene, validating its entities and constraints.
func Unmarshal(data []byte) (*Scene, error) {
	result := New(Settings{})
	err := wire.Decode(data, func(f *wire.Field) error {
		switch f.Number {
		case fieldSceneSettings:
			settings, err := UnmarshalSettings(f.Data())
			if err != nil {
				return errors.Wrap(err, "unable to decode settings")
			}
			result.Settings = settings
		case fieldSceneEntity:
			entity, err := UnmarshalEntity(f.Data())
			if err != nil {
				return errors.Wrap(err, "unable to decode entity")
			} else if err = result.Upsert(entity); err != nil {
				return errors.Wrapf(err, "invalid entity (%s)", entity.Path)
			}
		case fieldSceneMaterial:
			material, err := UnmarshalMaterial(f.Data())
			if err != nil {
				return errors.Wrap(err, "unable to decode material")
			}
			result.UpsertMaterial(material)
		case fieldSceneConstraint:
			constraint, err := constraints.Unmarshal(f.Data())
			if err != nil {
				return errors.Wrap(err, "unable to decode constraint")
			} else if err = result.SetConstraint(constraint); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
