// ops_generator generates the builder methods of lowered.LinearIR for the standard elementwise operations:
//
// - gen_ops.go: binary ops (Add, Mul, Div, ...) and unary ops (Exp, Relu, Tanh, ...).
//
// It must be run from the root of the module, usually with go generate.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path"

	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

const fileName = "gen_ops.go"

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	fullPath := path.Join(must.M1(os.Getwd()), fileName)
	f := must.M1(os.Create(fullPath))
	must.M(GenerateOps(f))
	must.M(f.Close())

	cmd := exec.Command("gofmt", "-w", fullPath)
	klog.V(1).Infof("\t%s", cmd)
	must.M(cmd.Run())
	fmt.Printf("✅ ops_generator:\tsuccessfully generated %s\n", fullPath)
}
