// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux

package shmbox

import (
	"fmt"
	"time"
)

func ExampleManager() {
	producer := NewManager(Config{})
	defer producer.Close()
	consumer := NewManager(Config{})
	defer consumer.Close()
	defer producer.Reclaim("example-channel")

	if err := producer.PublishArray("example-channel", []float64{1, 2, 3}); err != nil {
		fmt.Println(err)
		return
	}
	values, err := consumer.ConsumeArray("example-channel", 5*time.Second)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(values)
	// Output:
	// [1 2 3]
}
