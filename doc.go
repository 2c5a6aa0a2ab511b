/*
Package phtrees provides the persistence-tree (PH-tree) model for
inspecting a persistence diagram through the optimal volumes of its
pairs.

A persistence pair is a (birth index, death index) pair of cells of a
filtered complex. A Forest arranges the pairs of one degree into
trees: each pair names the death index of the pair that encloses it,
or Inf if it is a root. The optimal volume of a pair is the pair
itself plus the volumes of all pairs below it, walked in pre-order.

Volumes

A Node is its own optimal volume. A StableVolume is a view over a
node that drops the direct children born within epsilon of the
node's own birth time; surviving children keep their whole subtree.
Both satisfy VolumeLike, so geometry and serialization treat them the
same.

Geometry lookups go through a Resolver configured per GeometryKind:
Coordinates for point positions, Symbols for vertex labels. A forest
can be built without either; the matching serialized fields are then
null.

Queries

A PointQuery picks the pair nearest to a point of the diagram and a
RectangleQuery picks every pair inside a box. A VolumeSelector decides
whether each hit is reported as its optimal volume or its stable
volume. A resolved query serializes to a QueryDict, the
"format-version" 2 JSON document that diagram viewers read.

Snapshots

A Forest can be written out as a Snapshot: a compact protobuf-wire
encoding stored under its BLAKE2b content address in any Persist
(memory, filesystem or S3).
*/
package phtrees
