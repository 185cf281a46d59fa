// Package geom holds the planar geometry used by joint detection: vector
// helpers over gonum's r3.Vec, sdfx 4x4 transforms, segments, planes, the
// plane-plane intersection solver, the line-polygon clipper and the
// edge-membership classifier.
//
// Functions take an explicit tolerance where a comparison is made. Segments
// do not record which frame they are in; callers track that.
package geom
