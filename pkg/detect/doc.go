// Package detect finds where planar components meet and records the joint
// each contact implies.
//
// For every unordered pair of components the sweep decides one of:
//
//   - coplanar and overlapping: the two are merged into a coplanar group and
//     no joints are recorded;
//   - intersecting: the planes' common line is clipped against both world
//     polygons, the shared spans are mapped into each component's local frame
//     and classified as finger, hole or slot joints;
//   - no relation, or degenerate when the geometry has no usable plane.
//
// Joints are appended to the components' collections. Call
// model.Assembly.Reset before re-running detection on the same components.
package detect
