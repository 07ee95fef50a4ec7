package contract_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/apex/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/bjaus/contract"
)

// User is the DTO returned by the user endpoints.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func Example() {
	// A resolver endpoint keeps the example self-contained; swap
	// Resolve for Method/Path plus WithBaseURL to go over HTTP.
	api := contract.MustNew(contract.Contract{
		"getUser": {
			Resolve: func(ctx context.Context, in contract.Input) (any, error) {
				return User{ID: 7, Name: "ada"}, nil
			},
			Schemas: contract.Schemas{
				PathParams: contract.Object(
					contract.Field{Name: "id", Rules: []validation.Rule{validation.Required}},
				),
			},
		},
	})

	user, err := contract.Call[User](context.Background(), api, "getUser", contract.Input{
		PathParams: contract.Params{"id": 7},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%d %s\n", user.ID, user.Name)

	// Output:
	// 7 ada
}

func Example_safeCall() {
	api := contract.MustNew(contract.Contract{
		"flaky": {
			Resolve: func(ctx context.Context, in contract.Input) (any, error) {
				return nil, fmt.Errorf("backend hiccup")
			},
		},
	})

	res := contract.SafeCall[User](context.Background(), api, "flaky", contract.Input{})
	if !res.OK {
		fmt.Printf("%s (%d)\n", res.Err.Type, res.Err.Status)
	}

	// Output:
	// client_exception (-1)
}

func Example_validation() {
	api := contract.MustNew(contract.Contract{
		"createUser": {
			Resolve: func(ctx context.Context, in contract.Input) (any, error) {
				return in.Payload, nil
			},
			Schemas: contract.Schemas{
				Payload: contract.Object(
					contract.Field{Name: "name", Rules: []validation.Rule{validation.Required}},
				),
			},
		},
	})

	res := contract.SafeCall[map[string]any](context.Background(), api, "createUser", contract.Input{
		Payload: map[string]any{"name": ""},
	})
	if !res.OK {
		fmt.Println(res.Err.RawError)
	}

	// Output:
	// validation: name: cannot be blank
}

func Example_hooks() {
	api := contract.MustNew(contract.Contract{
		"getUser": {
			Resolve: func(ctx context.Context, in contract.Input) (any, error) {
				return User{ID: 7, Name: "ada"}, nil
			},
		},
	})

	stop := api.OnCall("getUser", func(info contract.CallInfo) {
		fmt.Printf("calling %s id=%v\n", info.Endpoint, info.PathParams["id"])
	})
	defer stop()

	contract.SafeCall[User](context.Background(), api, "getUser", contract.Input{
		PathParams: contract.Params{"id": 7},
	})

	// Output:
	// calling getUser id=7
}

// Example_logging wires an apex/log logger into the client for
// request/response diagnostics.
func Example_logging() {
	api := contract.MustNew(contract.Contract{
		"listUsers": {Method: http.MethodGet, Path: "/users"},
	},
		contract.WithBaseURL("https://api.example.com"),
		contract.WithUserAgent("myapp/1.0"),
		contract.WithLogger(log.Log),
	)
	_ = api
}
