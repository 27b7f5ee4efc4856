package launch

import (
	"reflect"
	"testing"
)

func TestBuildArgvPrependsProgram(t *testing.T) {
	got := buildArgv("/bin/echo", []string{"hi", "there"})
	want := []string{"/bin/echo", "hi", "there"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buildArgv() = %v, want %v", got, want)
	}
}

func TestBuildArgvNoExtraArgs(t *testing.T) {
	got := buildArgv("/bin/echo", nil)
	want := []string{"/bin/echo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buildArgv() = %v, want %v", got, want)
	}
}
