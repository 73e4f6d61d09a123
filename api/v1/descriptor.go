package v1

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FileName is the path polarity.proto is registered under.
const FileName = "reviewsent/polarity/v1/polarity.proto"

// File_polarity_proto describes polarity.proto. It is registered with
// protoregistry.GlobalFiles so server reflection can describe the service.
var File_polarity_proto = mustRegister(&descriptorpb.FileDescriptorProto{
	Name:       proto.String(FileName),
	Package:    proto.String("reviewsent.polarity.v1"),
	Dependency: []string{wrapperspb.File_google_protobuf_wrappers_proto.Path()},
	Syntax:     proto.String("proto3"),
	Options: &descriptorpb.FileOptions{
		GoPackage: proto.String("github.com/godilite/reviewsent/api/v1;v1"),
	},
	Service: []*descriptorpb.ServiceDescriptorProto{{
		Name: proto.String("Polarity"),
		Method: []*descriptorpb.MethodDescriptorProto{{
			Name:       proto.String("Score"),
			InputType:  proto.String(".google.protobuf.StringValue"),
			OutputType: proto.String(".google.protobuf.DoubleValue"),
		}},
	}},
})

func mustRegister(fdp *descriptorpb.FileDescriptorProto) protoreflect.FileDescriptor {
	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("build %s: %v", fdp.GetName(), err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("register %s: %v", fdp.GetName(), err))
	}
	return fd
}
