package domain

import "fmt"

// FeatureKind is the structural kind of an OpenStreetMap element.
type FeatureKind string

const (
	KindNode     FeatureKind = "node"
	KindWay      FeatureKind = "way"
	KindRelation FeatureKind = "relation"
)

// Feature is a police-tagged map element normalized at the service boundary.
// It is either a PointFeature or an AreaFeature; callers only use the
// uniform accessors and never branch on geometry again.
type Feature interface {
	Kind() FeatureKind
	SourceID() int64
	Tags() map[string]string
	// RepresentativeCoordinates returns the single point used for the feature
	// and false when the element carried no usable geometry.
	RepresentativeCoordinates() (Coordinates, bool)
}

// PointFeature is a node with its own coordinate.
type PointFeature struct {
	ID       int64
	Position Coordinates
	TagSet   map[string]string
}

func (f PointFeature) Kind() FeatureKind       { return KindNode }
func (f PointFeature) SourceID() int64         { return f.ID }
func (f PointFeature) Tags() map[string]string { return f.TagSet }

func (f PointFeature) RepresentativeCoordinates() (Coordinates, bool) {
	return f.Position, f.Position.IsValid()
}

// AreaFeature is a way or relation represented by its precomputed centroid.
// Center is nil when the upstream service did not provide one.
type AreaFeature struct {
	Structure FeatureKind
	ID        int64
	Center    *Coordinates
	TagSet    map[string]string
}

func (f AreaFeature) Kind() FeatureKind       { return f.Structure }
func (f AreaFeature) SourceID() int64         { return f.ID }
func (f AreaFeature) Tags() map[string]string { return f.TagSet }

func (f AreaFeature) RepresentativeCoordinates() (Coordinates, bool) {
	if f.Center == nil {
		return Coordinates{}, false
	}
	return *f.Center, f.Center.IsValid()
}

// FeatureID builds the composite station id "<kind>_<id>".
// Features of different kinds that share a numeric id get distinct ids.
func FeatureID(f Feature) string {
	return fmt.Sprintf("%s_%d", f.Kind(), f.SourceID())
}
