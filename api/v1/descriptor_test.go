package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

func TestPolarityDescriptorRegistered(t *testing.T) {
	fd, err := protoregistry.GlobalFiles.FindFileByPath(Polarity_ServiceDesc.Metadata.(string))
	require.NoError(t, err)
	assert.Equal(t, File_polarity_proto, fd)

	d, err := protoregistry.GlobalFiles.FindDescriptorByName(ServiceName)
	require.NoError(t, err)
	svc, ok := d.(protoreflect.ServiceDescriptor)
	require.True(t, ok)

	require.Equal(t, 1, svc.Methods().Len())
	m := svc.Methods().Get(0)
	assert.Equal(t, protoreflect.Name(Polarity_ServiceDesc.Methods[0].MethodName), m.Name())
	assert.Equal(t, protoreflect.FullName("google.protobuf.StringValue"), m.Input().FullName())
	assert.Equal(t, protoreflect.FullName("google.protobuf.DoubleValue"), m.Output().FullName())
	assert.False(t, m.IsStreamingClient())
	assert.False(t, m.IsStreamingServer())
}
