package lfcdkstack_test

import (
	"fmt"

	"github.com/advdv/lfcdk/lfcdk/lfcdkstack"
	"github.com/advdv/lfcdk/lfcdkutil"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

// Example_synthesize shows the CDK app entrypoint. The environment is selected
// with the env context key:
//
//	cdk synth --context env=dev
func Example_synthesize() {
	defer jsii.Close()

	app := awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]any{lfcdkutil.EnvContextKey: "dev"},
	})

	envName, err := lfcdkutil.EnvName(app)
	if err != nil {
		panic(err)
	}

	dep, err := lfcdkstack.Synthesize(app, lfcdkstack.Props{
		EnvName:        envName,
		DefaultAccount: "123456789012",
	})
	if err != nil {
		panic(err)
	}

	fmt.Println(*dep.Primary().StackName(), dep.Secondary() == nil, dep.Edge().Topology())

	app.Synth(nil)
	// Output: LangfuseDev true alb
}
