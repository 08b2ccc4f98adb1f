// Package rpc describes the daybook.v1.DayBook gRPC service.
//
// Messages are protobuf well-known types (structpb.Struct, wrapperspb.BoolValue,
// emptypb.Empty), so the service needs no generated code. Typed request and
// response values in this package convert to and from those wire messages.
package rpc
