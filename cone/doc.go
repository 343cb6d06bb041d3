// Package cone builds the Node Set (spec §4.C): the transitive fanout
// (TFO) and transitive fanin (TFI) regions a fault site must activate to
// reach a primary output and be justified from the primary inputs.
//
// Built on a queue/visited/functional-Option traversal shape, adapted to
// gate.NodeID and split into two directed walks (forward along Fanout
// for TFO, backward along Fanin for TFI) instead of one undirected walk.
package cone
