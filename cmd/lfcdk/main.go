// Command lfcdk is the CDK app that declares a Langfuse deployment. It is run by
// the cdk CLI, see cdk.json:
//
//	cdk synth --context env=dev
package main

import (
	"fmt"
	"os"

	"github.com/advdv/lfcdk/internal/logging"
	"github.com/advdv/lfcdk/lfcdk/lfcdkstack"
	"github.com/advdv/lfcdk/lfcdkutil"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	defer jsii.Close()

	flush, err := logging.Setup(logging.Opts{Verbose: logging.VerboseFromEnv()})
	if err != nil {
		return err
	}
	defer flush()

	app := awscdk.NewApp(nil)

	envName, err := lfcdkutil.EnvName(app)
	if err != nil {
		return err
	}

	if _, err := lfcdkstack.Synthesize(app, lfcdkstack.Props{EnvName: envName}); err != nil {
		return err
	}

	zap.S().Debugw("synthesizing cloud assembly", "env", envName)
	app.Synth(nil)

	return nil
}
